package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/pkg/jobs"
)

type recordingPublisher struct {
	mu       sync.Mutex
	events   []Event
	failures int
}

func (r *recordingPublisher) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("broker unavailable")
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) received() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestEventEncodeUsesSnakeCase(t *testing.T) {
	body, err := Event{Type: TypeStudentRegistered, StudentID: "stu-1", ActorID: "admin"}.Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "student.registered", decoded["type"])
	assert.Equal(t, "stu-1", decoded["student_id"])
	assert.NotContains(t, decoded, "timetable_id")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), Event{Type: TypeTimetableAllocated}))
}

func TestAsyncPublisherRetriesFailedDelivery(t *testing.T) {
	target := &recordingPublisher{failures: 1}
	publisher := NewAsyncPublisher(target, jobs.QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond})
	publisher.Start(context.Background())
	defer publisher.Stop()

	require.NoError(t, publisher.Publish(context.Background(), Event{Type: TypeSlotsMaterialized, TimetableID: "tt-1"}))

	require.Eventually(t, func() bool { return len(target.received()) == 1 }, time.Second, 5*time.Millisecond)
	got := target.received()[0]
	assert.Equal(t, "tt-1", got.TimetableID)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestAsyncPublisherRejectsWhenNotStarted(t *testing.T) {
	publisher := NewAsyncPublisher(&recordingPublisher{}, jobs.QueueConfig{})
	assert.Error(t, publisher.Publish(context.Background(), Event{Type: TypeTimetableCreated}))
}
