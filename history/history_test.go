package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/codesmith/core"
)

func TestAppendAndReadChats(t *testing.T) {
	s := NewInMemoryStore()

	s.AppendChat("user-1", ChatRecord{Prompt: "first", Timestamp: time.Now()})
	s.AppendChat("user-1", ChatRecord{Prompt: "second", Timestamp: time.Now()})
	s.AppendChat("user-2", ChatRecord{Prompt: "other", Timestamp: time.Now()})

	chats := s.Chats("user-1")
	require.Len(t, chats, 2)
	assert.Equal(t, "first", chats[0].Prompt)
	assert.Equal(t, "second", chats[1].Prompt)
	assert.Len(t, s.Chats("user-2"), 1)
	assert.Nil(t, s.Chats("unknown"))
}

func TestRetentionCap(t *testing.T) {
	s := NewInMemoryStore(func(o *InMemoryStoreOptions) { o.MaxRecords = 3 })

	for i := 0; i < 5; i++ {
		s.AppendChat("user-1", ChatRecord{Prompt: fmt.Sprintf("p-%d", i)})
	}
	chats := s.Chats("user-1")
	require.Len(t, chats, 3)
	assert.Equal(t, "p-2", chats[0].Prompt)
	assert.Equal(t, "p-4", chats[2].Prompt)
}

func TestExecutionsAndClear(t *testing.T) {
	s := NewInMemoryStore()

	s.AppendExecution("user-1", ExecutionRecord{
		Language: "python",
		Result:   core.ExecutionResult{Success: true, Stdout: "hi\n"},
	})
	require.Len(t, s.Executions("user-1"), 1)

	s.Clear("user-1")
	assert.Nil(t, s.Executions("user-1"))
	assert.Nil(t, s.Chats("user-1"))
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	s := NewInMemoryStore()
	s.AppendChat("user-1", ChatRecord{Prompt: "original"})

	chats := s.Chats("user-1")
	chats[0].Prompt = "mutated"

	assert.Equal(t, "original", s.Chats("user-1")[0].Prompt)
}

func TestConcurrentAppends(t *testing.T) {
	s := NewInMemoryStore(func(o *InMemoryStoreOptions) { o.MaxRecords = 1000 })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AppendChat("user-1", ChatRecord{Prompt: fmt.Sprintf("p-%d", i)})
			s.AppendExecution("user-1", ExecutionRecord{Language: "python"})
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Chats("user-1"), 50)
	assert.Len(t, s.Executions("user-1"), 50)
}
