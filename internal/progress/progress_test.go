package progress

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"TLC/internal/logging"

	"github.com/stretchr/testify/assert"
)

func TestObserveIsRateLimited(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stderr)

	r := New("integral", time.Hour)
	for i := 1; i <= 1000; i++ {
		r.Observe(i, 1000)
	}
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\n"), "first burst and the final row")
	assert.Contains(t, out, "integral: 1/1000 rows")
	assert.Contains(t, out, "integral: 1000/1000 rows (100%)")
}
