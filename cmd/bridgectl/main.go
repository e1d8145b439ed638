// bridgectl: interactive client for a voicebridge room.
// Type a line to speak it; replies are printed and any audio is saved to disk.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-voicebridge/pkg/gateway"
)

var (
	server   = flag.String("server", "ws://localhost:8080", "voicebridge base URL")
	room     = flag.String("room", "", "Room name (random when empty)")
	speak    = flag.Bool("speak", false, "Ask the server to voice replies")
	audioDir = flag.String("audio-dir", "", "Directory for received audio (discarded when empty)")
)

func main() {
	flag.Parse()

	name := *room
	if name == "" {
		name = "cli-" + uuid.NewString()[:8]
	}

	u, err := url.Parse(*server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ invalid server URL: %v\n", err)
		os.Exit(1)
	}
	u.Path = "/ws/rooms/" + url.PathEscape(name)
	u.RawQuery = fmt.Sprintf("speak=%t", *speak)

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ connect %s: %v\n", u, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("🔌 Connected to room %s\n", name)
	fmt.Println("   Type a message and press Enter. Ctrl+C to quit.")
	fmt.Println()

	done := make(chan struct{})
	go readLoop(conn, done)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := conn.WriteJSON(gateway.ClientFrame{Text: line}); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  send: %v\n", err)
				return
			}
		case <-done:
			fmt.Println("🔌 Server closed the connection")
			return
		case <-quit:
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			fmt.Println("\n👋 Bye")
			return
		}
	}
}

func readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	clips := 0

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if mt == websocket.BinaryMessage {
			clips++
			saveAudio(data, clips)
			continue
		}

		var frame gateway.ServerFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			fmt.Printf("⚠️  unreadable frame: %s\n", data)
			continue
		}

		switch frame.Type {
		case gateway.FrameSession:
			if frame.ConversationID != "" {
				fmt.Printf("🧵 Conversation %s\n", frame.ConversationID)
			}
		case gateway.FrameReply:
			marker := "🤖"
			if frame.Kind != "ok" {
				marker = "⚠️ "
			}
			fmt.Printf("%s %s\n", marker, frame.Text)
		case gateway.FrameError:
			fmt.Printf("❌ %s\n", frame.Error)
		}
	}
}

func saveAudio(data []byte, n int) {
	if *audioDir == "" {
		return
	}
	path := filepath.Join(*audioDir, fmt.Sprintf("reply-%03d.audio", n))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  save audio: %v\n", err)
		return
	}
	fmt.Printf("🔊 %s (%d bytes)\n", path, len(data))
}
