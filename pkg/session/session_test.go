package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-voicebridge/pkg/assistant"
	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/conversation"
	"github.com/teslashibe/go-voicebridge/pkg/tts"
)

func newTestManager(backend assistant.Backend, voice tts.Provider) *Manager {
	return NewManager(BackendFactory(backend, nil), voice, nil)
}

func TestOpenReusesRoom(t *testing.T) {
	m := newTestManager(chatbase.NewMock(), nil)

	a, created := m.Open("lobby")
	if !created {
		t.Error("first Open should create")
	}
	b, created := m.Open(" lobby ")
	if created || a != b {
		t.Error("second Open should return the same session")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	anon, created := m.Open("")
	if !created || !strings.HasPrefix(anon.Room(), "room-") {
		t.Errorf("anonymous room = %q, created=%v", anon.Room(), created)
	}
}

func TestGreetThenSay(t *testing.T) {
	backend := chatbase.NewMock()
	m := newTestManager(backend, nil)
	s, _ := m.Open("kitchen")
	ctx := context.Background()

	greet := s.Greet(ctx, false)
	if greet.Text != assistant.Greeting || !greet.Greeted {
		t.Errorf("Greet() = %+v", greet)
	}
	if backend.CallCount() != 0 {
		t.Error("greeting must not call the backend")
	}

	res := s.Say(ctx, "turn on the lights", false)
	if res.Text != "echo: turn on the lights" {
		t.Errorf("Say() = %q", res.Text)
	}

	turns := backend.LastCall().Turns
	want := []conversation.Turn{
		{Role: conversation.RoleAssistant, Content: assistant.Greeting},
		{Role: conversation.RoleUser, Content: "turn on the lights"},
	}
	if len(turns) != len(want) || turns[0] != want[0] || turns[1] != want[1] {
		t.Errorf("sent turns = %+v, want %+v", turns, want)
	}
	if got := backend.LastCall().ConversationID; got != "kitchen" {
		t.Errorf("conversation id = %q, want room seed", got)
	}

	info := s.Info()
	if info.Turns != 2 || info.Items != 3 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestRespondUsesSuppliedHistory(t *testing.T) {
	backend := chatbase.NewMock()
	m := newTestManager(backend, tts.NewMock())
	s, _ := m.Open("r1")

	history := conversation.Records([]conversation.Record{
		{Type: conversation.ItemMessage, Role: conversation.RoleUser, Content: "hello"},
	})
	res := s.Respond(context.Background(), history, true)

	if res.Text != "echo: hello" || res.Audio == nil {
		t.Errorf("Respond() = %+v", res)
	}
	if s.Info().Items != 0 {
		t.Error("Respond must not touch the session history")
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	backend := &chatbase.Mock{
		SendFunc: func(_ context.Context, turns []conversation.Turn, id string) chatbase.Reply {
			return chatbase.Reply{Kind: chatbase.KindOK, Text: "ok", ConversationID: "conv-" + turns[0].Content}
		},
	}
	m := NewManager(func(room string) *assistant.Assistant { return assistant.New(backend) }, nil, nil)

	a, _ := m.Open("a")
	b, _ := m.Open("b")
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, s := range []*Session{a, b} {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Say(ctx, s.Room(), false)
		}(s)
	}
	wg.Wait()

	if got := a.Info().ConversationID; got != "conv-a" {
		t.Errorf("room a id = %q", got)
	}
	if got := b.Info().ConversationID; got != "conv-b" {
		t.Errorf("room b id = %q", got)
	}
}

func TestEndDropsIdentity(t *testing.T) {
	backend := chatbase.MockReply(chatbase.Reply{Kind: chatbase.KindOK, Text: "ok", ConversationID: "server-id"})
	m := newTestManager(backend, nil)
	ctx := context.Background()

	s, _ := m.Open("r")
	s.Say(ctx, "hi", false)
	if id := s.Info().ConversationID; id != "server-id" {
		t.Fatalf("ConversationID = %q", id)
	}

	if !m.End("r") {
		t.Fatal("End() = false")
	}
	if m.End("r") {
		t.Error("second End() should report false")
	}
	if _, ok := m.Get("r"); ok {
		t.Error("session still present after End")
	}

	fresh, created := m.Open("r")
	if !created {
		t.Error("expected a new session")
	}
	if id := fresh.Info().ConversationID; id != "r" {
		t.Errorf("new session id = %q, want room seed", id)
	}
}

func TestListAndStats(t *testing.T) {
	backend := &chatbase.Mock{
		SendFunc: func(_ context.Context, turns []conversation.Turn, _ string) chatbase.Reply {
			if turns[len(turns)-1].Content == "bad" {
				return chatbase.Reply{Kind: chatbase.KindMalformedResponse}
			}
			return chatbase.Reply{Kind: chatbase.KindOK, Text: "fine"}
		},
	}
	m := newTestManager(backend, tts.NewMock())
	ctx := context.Background()

	b, _ := m.Open("b")
	a, _ := m.Open("a")
	a.Greet(ctx, true)
	a.Say(ctx, "good", false)
	b.Say(ctx, "bad", false)
	m.End("b")

	list := m.List()
	if len(list) != 1 || list[0].Room != "a" {
		t.Errorf("List() = %+v", list)
	}

	st := m.Stats()
	if st.Sessions != 1 || st.Opened != 2 || st.Ended != 1 {
		t.Errorf("session counts = %+v", st)
	}
	if st.Turns != 3 || st.Greetings != 1 || st.Voiced != 1 {
		t.Errorf("turn counts = %+v", st)
	}
	if st.Outcomes[chatbase.KindOK] != 2 || st.Outcomes[chatbase.KindMalformedResponse] != 1 {
		t.Errorf("outcomes = %+v", st.Outcomes)
	}
}

func TestHooks(t *testing.T) {
	m := newTestManager(chatbase.NewMock(), nil)

	var mu sync.Mutex
	var log []string
	record := func(s string) {
		mu.Lock()
		log = append(log, s)
		mu.Unlock()
	}
	m.OnOpen(func(room string) { record("open:" + room) })
	m.OnTurn(func(res Result) { record("turn:" + res.Room + ":" + res.Text) })
	m.OnEnd(func(room string) { record("end:" + room) })

	s, _ := m.Open("h")
	m.Open("h")
	s.Say(context.Background(), "x", false)
	m.End("h")

	want := []string{"open:h", "turn:h:echo: x", "end:h"}
	if strings.Join(log, "|") != strings.Join(want, "|") {
		t.Errorf("hooks = %v, want %v", log, want)
	}
}

func TestSnapshotsDoNotWaitOnTurn(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &chatbase.Mock{
		SendFunc: func(_ context.Context, _ []conversation.Turn, _ string) chatbase.Reply {
			close(started)
			<-release
			return chatbase.Reply{Kind: chatbase.KindOK, Text: "late", ConversationID: "conv-slow"}
		},
	}
	m := newTestManager(backend, nil)
	s, _ := m.Open("busy")

	done := make(chan Result)
	go func() { done <- s.Say(context.Background(), "hello", false) }()
	<-started

	snap := make(chan []Info)
	go func() { snap <- m.List() }()
	select {
	case list := <-snap:
		if len(list) != 1 || list[0].Items != 1 || list[0].ConversationID != "busy" {
			t.Errorf("List() mid-turn = %+v", list)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("List() waited on a turn in flight")
	}

	ended := make(chan bool)
	go func() { ended <- m.End("busy") }()
	select {
	case ok := <-ended:
		if !ok {
			t.Error("End() = false")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("End() waited on a turn in flight")
	}

	close(release)
	res := <-done
	if res.Text != "late" {
		t.Errorf("Say() = %+v", res)
	}
	info := s.Info()
	if info.ConversationID != "conv-slow" || info.Items != 2 || info.Turns != 1 {
		t.Errorf("Info() after turn = %+v", info)
	}
}
