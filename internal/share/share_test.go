package share

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crypto-advisor/internal/errors"
)

type recorder struct {
	name string
	args []string
	err  error
}

func newTestSharer(goos string, found bool, rec *recorder) *Sharer {
	s := New(zerolog.Nop())
	s.goos = goos
	s.lookPath = func(name string) (string, error) {
		if !found {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + name, nil
	}
	s.start = func(_ context.Context, name string, args ...string) error {
		rec.name = name
		rec.args = args
		return rec.err
	}
	return s
}

func TestShareRejectsLocalFiles(t *testing.T) {
	s := newTestSharer("linux", true, &recorder{})
	_, err := s.Share(context.Background(), "file:///home/me/index.html", "hi")
	require.Error(t, err)
	assert.Equal(t, "shareAppModal.shareErrorFileProtocol", apperrors.AsTagged(err).Key)
}

func TestShareOpensIntent(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs int
	}{
		{"linux", "xdg-open", 1},
		{"darwin", "open", 1},
		{"windows", "rundll32", 2},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			rec := &recorder{}
			res, err := newTestSharer(tt.goos, true, rec).Share(context.Background(), "https://advisor.example", "Check this out")
			require.NoError(t, err)
			assert.True(t, res.Opened)
			assert.Equal(t, "shareAppModal.shareOpened", res.Message.Key)
			assert.Equal(t, tt.wantName, rec.name)
			require.Len(t, rec.args, tt.wantArgs)
			assert.Equal(t, res.IntentURL, rec.args[len(rec.args)-1])
			assert.Contains(t, res.IntentURL, "url=https%3A%2F%2Fadvisor.example")
		})
	}
}

func TestShareManualFallback(t *testing.T) {
	rec := &recorder{}
	res, err := newTestSharer("linux", false, rec).Share(context.Background(), "https://advisor.example", "hi")
	require.NoError(t, err)
	assert.False(t, res.Opened)
	assert.Equal(t, "shareAppModal.manualInstructions", res.Message.Key)
	assert.Equal(t, "https://advisor.example", res.Message.Params["url"])
	assert.Empty(t, rec.name)
}

func TestShareOpenerFailure(t *testing.T) {
	rec := &recorder{err: errors.New("exec failed")}
	_, err := newTestSharer("linux", true, rec).Share(context.Background(), "https://advisor.example", "hi")
	require.Error(t, err)
	te := apperrors.AsTagged(err)
	assert.Equal(t, "shareAppModal.shareErrorGeneric", te.Key)
	assert.Equal(t, "exec failed", te.Params["details"])
}
