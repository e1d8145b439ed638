package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/conversation"
)

func userSays(text string) []conversation.Item {
	chat := conversation.NewChatContext()
	chat.AddMessage(conversation.RoleSystem, Instructions)
	chat.AddMessage(conversation.RoleUser, text)
	return chat.Items()
}

func TestRespondGreetsWithoutBackendCall(t *testing.T) {
	mock := chatbase.NewMock()
	a := New(mock)

	history := []conversation.Item{
		&conversation.Message{Role: conversation.RoleSystem, Content: []string{"sys"}},
		&conversation.FunctionCall{Name: "noop"},
		&conversation.Message{Role: conversation.RoleUser, Content: []string{""}},
	}

	if got := a.Respond(context.Background(), history); got != Greeting {
		t.Errorf("Respond() = %q, want greeting", got)
	}
	if got := a.Respond(context.Background(), nil); got != Greeting {
		t.Errorf("Respond(nil) = %q, want greeting", got)
	}
	if mock.CallCount() != 0 {
		t.Errorf("backend called %d times, want 0", mock.CallCount())
	}
	if a.Greetings() != 2 {
		t.Errorf("Greetings() = %d, want 2", a.Greetings())
	}
}

func TestRespondTracksConversationID(t *testing.T) {
	mock := chatbase.MockReply(chatbase.Reply{Kind: chatbase.KindOK, Text: "Sure.", ConversationID: "abc"})
	a := New(mock)
	ctx := context.Background()

	if got := a.Respond(ctx, userSays("hello")); got != "Sure." {
		t.Errorf("Respond() = %q, want Sure.", got)
	}
	if first := mock.LastCall(); first.ConversationID != "" {
		t.Errorf("first call conversation id = %q, want empty", first.ConversationID)
	}

	a.Respond(ctx, userSays("again"))
	if second := mock.LastCall(); second.ConversationID != "abc" {
		t.Errorf("second call conversation id = %q, want abc", second.ConversationID)
	}
}

func TestRespondKeepsIDWhenBackendOmitsIt(t *testing.T) {
	replies := []chatbase.Reply{
		{Kind: chatbase.KindOK, Text: "one", ConversationID: "abc"},
		{Kind: chatbase.KindOK, Text: "two"},
		{Kind: chatbase.KindBackendError, Status: 500},
		{Kind: chatbase.KindOK, Text: "four", ConversationID: "def"},
	}
	next := 0
	mock := &chatbase.Mock{
		SendFunc: func(context.Context, []conversation.Turn, string) chatbase.Reply {
			r := replies[next]
			next++
			return r
		},
	}
	a := New(mock)
	ctx := context.Background()

	want := []string{"abc", "abc", "abc", "def"}
	for i := range replies {
		a.Respond(ctx, userSays("q"))
		if id, ok := a.ConversationID(); !ok || id != want[i] {
			t.Errorf("turn %d: ConversationID() = %q, %v, want %q", i, id, ok, want[i])
		}
	}
}

func TestRespondSendsProjectedTurns(t *testing.T) {
	mock := chatbase.NewMock()
	a := New(mock)

	chat := conversation.NewChatContext()
	chat.AddMessage(conversation.RoleSystem, "sys")
	chat.AddMessage(conversation.RoleUser, "hi")
	chat.AddMessage(conversation.RoleAssistant, "hello")
	chat.Append(&conversation.FunctionCallOutput{Output: "42"})
	chat.AddMessage(conversation.RoleUser, "what time is it")

	if got := a.Respond(context.Background(), chat.Items()); got != "echo: what time is it" {
		t.Errorf("Respond() = %q", got)
	}

	turns := mock.LastCall().Turns
	if len(turns) != 3 {
		t.Fatalf("sent %d turns, want 3: %+v", len(turns), turns)
	}
	if turns[0].Role != conversation.RoleUser || turns[1].Role != conversation.RoleAssistant {
		t.Errorf("turn roles = %s, %s", turns[0].Role, turns[1].Role)
	}
}

func TestRespondFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		reply chatbase.Reply
		want  string
	}{
		{"transport", chatbase.Reply{Kind: chatbase.KindTransportFailure}, chatbase.FallbackUnavailable},
		{"backend", chatbase.Reply{Kind: chatbase.KindBackendError, Status: 500}, chatbase.FallbackUnavailable},
		{"malformed", chatbase.Reply{Kind: chatbase.KindMalformedResponse}, chatbase.FallbackInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(chatbase.MockReply(tt.reply))
			if got := a.Respond(context.Background(), userSays("hi")); got != tt.want {
				t.Errorf("Respond() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMalformedReplyStillRecordsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"conversationId":"x"}`))
	}))
	defer srv.Close()

	client, err := chatbase.NewClient(
		chatbase.WithAPIKey("k"),
		chatbase.WithChatbotID("b"),
		chatbase.WithURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	a := New(client)

	out := a.Turn(context.Background(), userSays("hi"))
	if out.Text != chatbase.FallbackInvalid {
		t.Errorf("Text = %q, want invalid fallback", out.Text)
	}
	if out.Kind != chatbase.KindMalformedResponse {
		t.Errorf("Kind = %s", out.Kind)
	}
	if out.ConversationID != "x" {
		t.Errorf("ConversationID = %q, want x", out.ConversationID)
	}
}

func TestWithSeed(t *testing.T) {
	mock := chatbase.NewMock()
	a := New(mock, WithSeed("room-1"))

	a.Respond(context.Background(), userSays("hi"))
	if got := mock.LastCall().ConversationID; got != "room-1" {
		t.Errorf("conversation id = %q, want room-1", got)
	}
}
