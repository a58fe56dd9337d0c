package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/availabilitybus"
	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/paymethod"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
)

type commands struct {
	out          io.Writer
	tenant       *tenantbus.Core
	umbrella     *umbrellabus.Core
	availability *availabilitybus.Core
	reservation  *reservationbus.Core
	payment      *paymentbus.Core
}

func (c commands) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "create-tenant":
		return c.createTenant(ctx, args)
	case "add-umbrella":
		return c.addUmbrella(ctx, args)
	case "book":
		return c.book(ctx, args)
	case "confirm":
		return c.confirm(ctx, args)
	case "cancel":
		return c.cancel(ctx, args)
	case "pay":
		return c.pay(ctx, args)
	case "confirm-payment":
		return c.confirmPayment(ctx, args)
	case "refund":
		return c.refund(ctx, args)
	case "availability":
		return c.queryAvailability(ctx, args)
	case "stats":
		return c.stats(ctx, args)
	}

	usage(c.out)
	return fmt.Errorf("unknown command: %s", name)
}

func (c commands) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// =============================================================================

type createTenantInput struct {
	Name string `flag:"name" validate:"required,max=120"`
	Slug string `flag:"slug" validate:"required,max=64"`
	Plan string `flag:"plan" validate:"required,oneof=FREE BASIC PRO ENTERPRISE"`
}

func (c commands) createTenant(ctx context.Context, args []string) error {
	var in createTenantInput

	fs := c.flags("create-tenant")
	fs.StringVar(&in.Name, "name", "", "Tenant name (Required)")
	fs.StringVar(&in.Slug, "slug", "", "Tenant slug (Required)")
	fs.StringVar(&in.Plan, "plan", plan.Free.String(), "Plan (FREE, BASIC, PRO, ENTERPRISE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := check(in); err != nil {
		return err
	}

	p, err := plan.Parse(in.Plan)
	if err != nil {
		return err
	}

	tnt, err := c.tenant.Create(ctx, tenantbus.NewTenant{
		Name: in.Name,
		Slug: in.Slug,
		Plan: p,
	})
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	fmt.Fprintf(c.out, "tenant created: id[%s] slug[%s] plan[%s] status[%s]\n", tnt.ID, tnt.Slug, tnt.Plan, tnt.Status)
	return nil
}

// =============================================================================

type addUmbrellaInput struct {
	Tenant      string `flag:"tenant" validate:"required"`
	Number      int    `flag:"number" validate:"required,gt=0"`
	Count       int    `flag:"count" validate:"gte=1,lte=500"`
	Row         string `flag:"row" validate:"required,max=8"`
	Type        string `flag:"type" validate:"required,oneof=STANDARD PREMIUM VIP FAMILY"`
	Description string `flag:"description" validate:"max=255"`
}

func (c commands) addUmbrella(ctx context.Context, args []string) error {
	var in addUmbrellaInput

	fs := c.flags("add-umbrella")
	fs.StringVar(&in.Tenant, "tenant", "", "Tenant slug (Required)")
	fs.IntVar(&in.Number, "number", 0, "Umbrella number, the first one when count > 1 (Required)")
	fs.IntVar(&in.Count, "count", 1, "Umbrellas to add with consecutive numbers")
	fs.StringVar(&in.Row, "row", "", "Row (Required)")
	fs.StringVar(&in.Type, "type", umbrellatype.Standard.String(), "Type (STANDARD, PREMIUM, VIP, FAMILY)")
	fs.StringVar(&in.Description, "description", "", "Description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := check(in); err != nil {
		return err
	}

	tenantID, err := c.tenant.QueryIDBySlug(ctx, in.Tenant)
	if err != nil {
		return fmt.Errorf("tenant[%s]: %w", in.Tenant, err)
	}

	typ, err := umbrellatype.Parse(in.Type)
	if err != nil {
		return err
	}

	nus := make([]umbrellabus.NewUmbrella, in.Count)
	for i := range nus {
		nus[i] = umbrellabus.NewUmbrella{
			Number:      in.Number + i,
			Row:         in.Row,
			Type:        typ,
			Description: in.Description,
		}
	}

	us, err := c.umbrella.CreateBatch(ctx, tenantID, nus)
	if err != nil {
		return fmt.Errorf("add umbrella: %w", err)
	}

	for _, u := range us {
		fmt.Fprintf(c.out, "umbrella added: id[%s] number[%d] row[%s] type[%s]\n", u.ID, u.Number, u.Row, u.Type)
	}
	return nil
}

// =============================================================================

type bookInput struct {
	Tenant   string `flag:"tenant" validate:"required"`
	Umbrella int    `flag:"umbrella" validate:"required,gt=0"`
	User     string `flag:"user" validate:"required,uuid"`
	Start    string `flag:"start" validate:"required,datetime=2006-01-02"`
	End      string `flag:"end" validate:"required,datetime=2006-01-02"`
	Type     string `flag:"type" validate:"required,oneof=GIORNALIERA SETTIMANALE MENSILE ANNUALE"`
	Notes    string `flag:"notes" validate:"max=500"`
}

func (c commands) book(ctx context.Context, args []string) error {
	var in bookInput

	fs := c.flags("book")
	fs.StringVar(&in.Tenant, "tenant", "", "Tenant slug (Required)")
	fs.IntVar(&in.Umbrella, "umbrella", 0, "Umbrella number (Required)")
	fs.StringVar(&in.User, "user", "", "Customer UUID (Required)")
	fs.StringVar(&in.Start, "start", "", "First day, 2006-01-02 (Required)")
	fs.StringVar(&in.End, "end", "", "Last day, 2006-01-02 (Required)")
	fs.StringVar(&in.Type, "type", bookingtype.Daily.String(), "Booking type (GIORNALIERA, SETTIMANALE, MENSILE, ANNUALE)")
	fs.StringVar(&in.Notes, "notes", "", "Notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := check(in); err != nil {
		return err
	}

	tenantID, err := c.tenant.QueryIDBySlug(ctx, in.Tenant)
	if err != nil {
		return fmt.Errorf("tenant[%s]: %w", in.Tenant, err)
	}

	umb, err := c.umbrella.QueryByNumber(ctx, tenantID, in.Umbrella)
	if err != nil {
		return fmt.Errorf("umbrella[%d]: %w", in.Umbrella, err)
	}

	dr, err := daterange.Parse(in.Start, in.End)
	if err != nil {
		return err
	}

	bt, err := bookingtype.Parse(in.Type)
	if err != nil {
		return err
	}

	r, err := c.reservation.Create(ctx, tenantID, reservationbus.NewReservation{
		UserID:     uuid.MustParse(in.User),
		UmbrellaID: umb.ID,
		Dates:      dr,
		Type:       bt,
		Notes:      in.Notes,
	})
	if err != nil {
		return fmt.Errorf("book: %w", err)
	}

	printReservation(c.out, "booked", r)
	return nil
}

// =============================================================================

type codeInput struct {
	Tenant string `flag:"tenant" validate:"required"`
	Code   string `flag:"code" validate:"required,startswith=BK"`
	Reason string `flag:"reason" validate:"max=255"`
}

func (c commands) parseCode(name string, args []string, reasonRequired bool) (codeInput, error) {
	var in codeInput

	fs := c.flags(name)
	fs.StringVar(&in.Tenant, "tenant", "", "Tenant slug (Required)")
	fs.StringVar(&in.Code, "code", "", "Booking code (Required)")
	if reasonRequired {
		fs.StringVar(&in.Reason, "reason", "", "Reason (Required)")
	}
	if err := fs.Parse(args); err != nil {
		return codeInput{}, err
	}

	if err := check(in); err != nil {
		return codeInput{}, err
	}

	if reasonRequired && in.Reason == "" {
		return codeInput{}, errors.New("invalid input: -reason is a required field")
	}

	return in, nil
}

func (c commands) lookup(ctx context.Context, in codeInput) (reservationbus.Reservation, error) {
	tenantID, err := c.tenant.QueryIDBySlug(ctx, in.Tenant)
	if err != nil {
		return reservationbus.Reservation{}, fmt.Errorf("tenant[%s]: %w", in.Tenant, err)
	}

	r, err := c.reservation.QueryByCode(ctx, tenantID, in.Code)
	if err != nil {
		return reservationbus.Reservation{}, fmt.Errorf("reservation[%s]: %w", in.Code, err)
	}

	return r, nil
}

func (c commands) confirm(ctx context.Context, args []string) error {
	in, err := c.parseCode("confirm", args, false)
	if err != nil {
		return err
	}

	r, err := c.lookup(ctx, in)
	if err != nil {
		return err
	}

	r, err = c.reservation.Confirm(ctx, r.TenantID, r.ID)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}

	printReservation(c.out, "confirmed", r)
	return nil
}

func (c commands) cancel(ctx context.Context, args []string) error {
	in, err := c.parseCode("cancel", args, true)
	if err != nil {
		return err
	}

	r, err := c.lookup(ctx, in)
	if err != nil {
		return err
	}

	if _, err := c.payment.CancelByReservation(ctx, r.TenantID, r.ID, in.Reason); err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}

	r, err = c.reservation.Cancel(ctx, r.TenantID, r.ID, in.Reason)
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}

	printReservation(c.out, "cancelled", r)
	return nil
}

// =============================================================================

type payInput struct {
	Tenant string `flag:"tenant" validate:"required"`
	Code   string `flag:"code" validate:"required,startswith=BK"`
	Method string `flag:"method" validate:"required,oneof=PAYPAL CREDIT_CARD CARD BANK_TRANSFER CASH"`
	Ref    string `flag:"ref" validate:"max=255"`
}

func (c commands) pay(ctx context.Context, args []string) error {
	var in payInput

	fs := c.flags("pay")
	fs.StringVar(&in.Tenant, "tenant", "", "Tenant slug (Required)")
	fs.StringVar(&in.Code, "code", "", "Booking code (Required)")
	fs.StringVar(&in.Method, "method", "", "Method (PAYPAL, CREDIT_CARD, BANK_TRANSFER, CASH) (Required)")
	fs.StringVar(&in.Ref, "ref", "", "External reference")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := check(in); err != nil {
		return err
	}

	r, err := c.lookup(ctx, codeInput{Tenant: in.Tenant, Code: in.Code})
	if err != nil {
		return err
	}

	m, err := paymethod.Parse(in.Method)
	if err != nil {
		return err
	}

	p, err := c.payment.Create(ctx, r.TenantID, paymentbus.NewPayment{
		ReservationID: r.ID,
		Method:        m,
		Amount:        r.TotalPrice,
		ExternalRef:   in.Ref,
	})
	if err != nil {
		return fmt.Errorf("pay: %w", err)
	}

	printPayment(c.out, "payment registered", p)
	return nil
}

type confirmPaymentInput struct {
	Tenant string `flag:"tenant" validate:"required"`
	Code   string `flag:"code" validate:"required,startswith=BK"`
	Ref    string `flag:"ref" validate:"max=255"`
}

func (c commands) confirmPayment(ctx context.Context, args []string) error {
	var in confirmPaymentInput

	fs := c.flags("confirm-payment")
	fs.StringVar(&in.Tenant, "tenant", "", "Tenant slug (Required)")
	fs.StringVar(&in.Code, "code", "", "Booking code (Required)")
	fs.StringVar(&in.Ref, "ref", "", "PayPal transaction id or bank transfer reference")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := check(in); err != nil {
		return err
	}

	r, err := c.lookup(ctx, codeInput{Tenant: in.Tenant, Code: in.Code})
	if err != nil {
		return err
	}

	p, err := c.payment.QueryByReservation(ctx, r.TenantID, r.ID)
	if err != nil {
		return fmt.Errorf("payment: %w", err)
	}

	switch p.Method {
	case paymethod.PayPal:
		p, err = c.payment.ConfirmPayPal(ctx, r.TenantID, p.ID, in.Ref)
	case paymethod.BankTransfer:
		p, err = c.payment.ConfirmBankTransfer(ctx, r.TenantID, p.ID, in.Ref)
	default:
		p, err = c.payment.ConfirmGeneric(ctx, r.TenantID, p.ID)
	}
	if err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}

	printPayment(c.out, "payment confirmed", p)
	return nil
}

func (c commands) refund(ctx context.Context, args []string) error {
	in, err := c.parseCode("refund", args, true)
	if err != nil {
		return err
	}

	r, err := c.lookup(ctx, in)
	if err != nil {
		return err
	}

	p, err := c.payment.QueryByReservation(ctx, r.TenantID, r.ID)
	if err != nil {
		return fmt.Errorf("payment: %w", err)
	}

	p, err = c.payment.Refund(ctx, r.TenantID, p.ID, in.Reason)
	if err != nil {
		return fmt.Errorf("refund: %w", err)
	}

	printPayment(c.out, "payment refunded", p)
	return nil
}

// =============================================================================

type availabilityInput struct {
	Tenant string `flag:"tenant" validate:"required"`
	Start  string `flag:"start" validate:"required,datetime=2006-01-02"`
	End    string `flag:"end" validate:"required,datetime=2006-01-02"`
	Type   string `flag:"type" validate:"omitempty,oneof=STANDARD PREMIUM VIP FAMILY"`
}

func (c commands) queryAvailability(ctx context.Context, args []string) error {
	var in availabilityInput

	fs := c.flags("availability")
	fs.StringVar(&in.Tenant, "tenant", "", "Tenant slug (Required)")
	fs.StringVar(&in.Start, "start", "", "First day, 2006-01-02 (Required)")
	fs.StringVar(&in.End, "end", "", "Last day, 2006-01-02 (Required)")
	fs.StringVar(&in.Type, "type", "", "Only umbrellas of this type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := check(in); err != nil {
		return err
	}

	tenantID, err := c.tenant.QueryIDBySlug(ctx, in.Tenant)
	if err != nil {
		return fmt.Errorf("tenant[%s]: %w", in.Tenant, err)
	}

	dr, err := daterange.Parse(in.Start, in.End)
	if err != nil {
		return err
	}

	var us []umbrellabus.Umbrella
	switch in.Type {
	case "":
		us, err = c.availability.QueryAvailable(ctx, tenantID, dr)
	default:
		typ, perr := umbrellatype.Parse(in.Type)
		if perr != nil {
			return perr
		}
		us, err = c.availability.QueryAvailableByType(ctx, tenantID, dr, typ)
	}
	if err != nil {
		return fmt.Errorf("availability: %w", err)
	}

	fmt.Fprintf(c.out, "%d umbrellas free from %s to %s\n", len(us), in.Start, in.End)
	for _, u := range us {
		fmt.Fprintf(c.out, "  number[%d] row[%s] type[%s]\n", u.Number, u.Row, u.Type)
	}
	return nil
}

type statsInput struct {
	Tenant string `flag:"tenant" validate:"required"`
}

func (c commands) stats(ctx context.Context, args []string) error {
	var in statsInput

	fs := c.flags("stats")
	fs.StringVar(&in.Tenant, "tenant", "", "Tenant slug (Required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := check(in); err != nil {
		return err
	}

	tenantID, err := c.tenant.QueryIDBySlug(ctx, in.Tenant)
	if err != nil {
		return fmt.Errorf("tenant[%s]: %w", in.Tenant, err)
	}

	st, err := c.reservation.Stats(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	paid, err := c.payment.Revenue(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("revenue: %w", err)
	}

	for _, s := range status.All {
		fmt.Fprintf(c.out, "%-10s %d\n", s, st.ByStatus[s])
	}
	fmt.Fprintf(c.out, "booked revenue %s\n", st.Revenue.StringFixed(2))
	fmt.Fprintf(c.out, "paid revenue   %s\n", paid.StringFixed(2))
	return nil
}

// =============================================================================

func printReservation(w io.Writer, what string, r reservationbus.Reservation) {
	fmt.Fprintf(w, "%s: code[%s] id[%s] dates[%s] total[%s] status[%s]\n", what, r.BookingCode, r.ID, r.Dates, r.TotalPrice.StringFixed(2), r.Status)
}

func printPayment(w io.Writer, what string, p paymentbus.Payment) {
	fmt.Fprintf(w, "%s: id[%s] method[%s] amount[%s] status[%s]\n", what, p.ID, p.Method, p.Amount.StringFixed(2), p.Status)
}
