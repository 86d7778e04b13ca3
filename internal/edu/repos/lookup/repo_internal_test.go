package lookup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/haukened/edu-verify/internal/edu/common/clock"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
)

func TestNewRepository_StampsLoadTime(t *testing.T) {
	at := time.Unix(1723550000, 0)
	r := newRepository(index.Empty(), nil, nil, 0.01, clock.NewMock(at))

	st := r.RepoStats()
	assert.Equal(t, at.Unix(), st.LoadedAt)
	assert.False(t, st.BloomEnabled, "nil factory disables the prefilter")
}

func TestCheckBloom_WithoutFilter(t *testing.T) {
	assert.True(t, checkBloom(nil, "stanford.edu"))
}
