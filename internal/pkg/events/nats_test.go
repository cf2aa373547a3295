package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := new(mockConn)
	var published []byte
	conn.On("Publish", "matka.result.declared", mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).([]byte) }).
		Return(nil)

	p := NewNATSPublisher(conn, "matka")
	err := p.Publish(context.Background(), ResultDeclared{GameID: 7, Day: "2026-10-19", Stage: "OPEN", Open: "138", Result: "2", Won: 3})
	require.NoError(t, err)
	conn.AssertExpectations(t)

	var env Envelope
	require.NoError(t, json.Unmarshal(published, &env))
	assert.Equal(t, TypeResultDeclared, env.EventType)
	assert.Equal(t, "matka-bot", env.Source)
	_, err = uuid.Parse(env.EventID)
	assert.NoError(t, err)

	var payload ResultDeclared
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, int64(7), payload.GameID)
	assert.Equal(t, "138", payload.Open)
	assert.Equal(t, 3, payload.Won)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	conn := new(mockConn)
	conn.On("Publish", "bid.settled", mock.Anything).Return(errors.New("connection closed"))

	p := NewNATSPublisher(conn, "")
	err := p.Publish(context.Background(), BidSettled{BidID: 1})
	assert.Error(t, err)
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	conn := new(mockConn)
	p := NewNATSPublisher(conn, "matka")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, ResultDeleted{GameID: 1}), context.Canceled)
	conn.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), BidSettled{}))
}
