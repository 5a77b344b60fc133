package dbchanges_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/AntonStoeckl/dbchanges-go/dbchanges" //nolint:revive
)

func Test_GetConsistencyLevel(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StrongConsistency, GetConsistencyLevel(ctx))
	assert.Equal(t, EventualConsistency, GetConsistencyLevel(WithEventualConsistency(ctx)))
	assert.Equal(t, StrongConsistency, GetConsistencyLevel(WithStrongConsistency(WithEventualConsistency(ctx))))
	assert.Equal(t, "eventual", EventualConsistency.String())
}
