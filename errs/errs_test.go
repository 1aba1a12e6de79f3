package errs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestNewHardBlockCategoryAndCode(t *testing.T) {
	err := NewHardBlock("observer not connected")
	assert.ErrorIs(t, err, HardBlock)
	assert.Equal(t, codes.FailedPrecondition, Code(err))
	assert.Contains(t, err.Error(), "observer not connected")
}

func TestNewCriticalDriftSurvivesWrapping(t *testing.T) {
	err := NewCriticalDrift("BTC-USD", "1.0", "1.5")
	wrapped := errors.Wrap(err, "reconciliation failed")

	assert.ErrorIs(t, wrapped, CriticalDrift)
	assert.Equal(t, codes.DataLoss, Code(wrapped))
}

func TestNewStreamFailureWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStreamFailure("binance_ws", cause)

	assert.ErrorIs(t, err, StreamFailure)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNewMalformedJournalIdentifiesLocation(t *testing.T) {
	err := NewMalformedJournal("/var/log/journal.jsonl", 42, errors.New("unexpected EOF"))

	assert.ErrorIs(t, err, MalformedJournal)
	assert.Contains(t, err.Error(), "/var/log/journal.jsonl:42")
}

func TestCodeDefaultsToUnknownForPlainErrors(t *testing.T) {
	assert.Equal(t, codes.Unknown, Code(errors.New("plain")))
}

func TestToGRPCStatusCarriesCategoryCode(t *testing.T) {
	err := NewHardBlock("rate limited")
	st := ToGRPCStatus(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
}
