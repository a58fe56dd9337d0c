package plan_test

import (
	"testing"

	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/stretchr/testify/assert"
)

func TestPlanLimits(t *testing.T) {
	assert.Equal(t, 10, plan.Free.MaxUmbrellas())
	assert.Equal(t, 50, plan.Basic.MaxUmbrellas())
	assert.Equal(t, 200, plan.Pro.MaxUmbrellas())
	assert.True(t, plan.Enterprise.IsUnlimited())

	assert.True(t, plan.Free.Allows(10))
	assert.False(t, plan.Free.Allows(11))

	assert.Equal(t, "9.99", plan.Basic.MonthlyPrice().StringFixed(2))
	assert.Equal(t, "0.00", plan.Free.MonthlyPrice().StringFixed(2))
}
