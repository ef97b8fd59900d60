package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSeedsAssistantTurn(t *testing.T) {
	store := NewStore()

	transcript := store.Start("+1-555", "Hi Sam, welcome! What's your budget?")
	require.Len(t, transcript, 1)
	assert.Equal(t, RoleAssistant, transcript[0].Role)
	assert.Equal(t, "Hi Sam, welcome! What's your budget?", transcript[0].Content)
	assert.Equal(t, 1, store.Len())
}

func TestStartOverwritesExistingSession(t *testing.T) {
	store := NewStore()

	store.Start("+1-555", "first greeting")
	_, err := store.AppendUser("+1-555", "hello")
	require.NoError(t, err)

	transcript := store.Start("+1-555", "second greeting")
	require.Len(t, transcript, 1)
	assert.Equal(t, "second greeting", transcript[0].Content)
	assert.Equal(t, 1, store.Len())
}

func TestAppendUserWithoutStart(t *testing.T) {
	store := NewStore()

	transcript, err := store.AppendUser("+1-555", "hello?")
	assert.Nil(t, transcript)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAppendPreservesOrder(t *testing.T) {
	store := NewStore()

	store.Start("+1-555", "greeting")
	_, err := store.AppendUser("+1-555", "I have 60L")
	require.NoError(t, err)
	transcript, err := store.AppendAssistant("+1-555", "Great, which area?")
	require.NoError(t, err)

	require.Len(t, transcript, 3)
	assert.Equal(t, []Turn{
		{Role: RoleAssistant, Content: "greeting"},
		{Role: RoleUser, Content: "I have 60L"},
		{Role: RoleAssistant, Content: "Great, which area?"},
	}, transcript)
}

func TestTranscriptNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Transcript("+1-555")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTranscriptReturnsCopy(t *testing.T) {
	store := NewStore()

	store.Start("+1-555", "greeting")
	transcript, err := store.Transcript("+1-555")
	require.NoError(t, err)

	// Mutating the returned slice must not leak into the store.
	transcript[0].Content = "tampered"

	fresh, err := store.Transcript("+1-555")
	require.NoError(t, err)
	assert.Equal(t, "greeting", fresh[0].Content)
}

func TestConcurrentAppendsDifferentKeys(t *testing.T) {
	store := NewStore()

	const sessions = 20
	const turnsPerSession = 25

	for i := 0; i < sessions; i++ {
		store.Start(fmt.Sprintf("+1-%03d", i), "greeting")
	}

	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for j := 0; j < turnsPerSession; j++ {
				_, err := store.AppendUser(key, "msg")
				assert.NoError(t, err)
			}
		}(fmt.Sprintf("+1-%03d", i))
	}
	wg.Wait()

	for i := 0; i < sessions; i++ {
		transcript, err := store.Transcript(fmt.Sprintf("+1-%03d", i))
		require.NoError(t, err)
		assert.Len(t, transcript, 1+turnsPerSession)
	}
}

func TestAcquireSerializesPerKey(t *testing.T) {
	store := NewStore()
	store.Start("+1-555", "greeting")

	const goroutines = 10
	var inCritical int32
	var wg sync.WaitGroup
	var mu sync.Mutex
	maxSeen := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := store.Acquire("+1-555")
			defer release()

			mu.Lock()
			inCritical++
			if int(inCritical) > maxSeen {
				maxSeen = int(inCritical)
			}
			mu.Unlock()

			_, err := store.AppendUser("+1-555", "msg")
			assert.NoError(t, err)
			_, err = store.AppendAssistant("+1-555", "reply")
			assert.NoError(t, err)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "critical section should never be shared for one key")

	transcript, err := store.Transcript("+1-555")
	require.NoError(t, err)
	// Greeting plus a strictly alternating user/assistant pair per goroutine.
	require.Len(t, transcript, 1+2*goroutines)
	for i := 1; i < len(transcript); i += 2 {
		assert.Equal(t, RoleUser, transcript[i].Role)
		assert.Equal(t, RoleAssistant, transcript[i+1].Role)
	}
}
