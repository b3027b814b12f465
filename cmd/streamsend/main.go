package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/eleven-am/streamplay/internal/audio"
	"github.com/eleven-am/streamplay/internal/render"
	"github.com/eleven-am/streamplay/internal/shared"
	"github.com/eleven-am/streamplay/internal/transport"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

const defaultChunkBytes = 3200

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("usage: streamsend <file.wav|file.pcm>")
	}
	path := os.Args[1]

	streamURL := os.Getenv("STREAM_URL")
	if streamURL == "" {
		streamURL = "ws://localhost:8080/v1/stream"
	}

	chunkBytes := defaultChunkBytes
	if v := os.Getenv("CHUNK_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			chunkBytes = n
		}
	}

	pcm, err := loadPCM(path)
	if err != nil {
		log.Fatal("load audio: ", err)
	}

	fmt.Printf("[SEND] Connecting to %s\n", streamURL)

	conn, resp, err := websocket.DefaultDialer.Dial(streamURL, nil)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("[SEND] Dial failed: %v, status=%d, body=%s\n", err, resp.StatusCode, string(body))
		}
		log.Fatal("dial: ", err)
	}
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(kind int, data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(kind, data)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("[SEND] Interrupting...")
		_ = write(websocket.TextMessage, []byte(transport.ActionInterrupt))
		conn.Close()
		os.Exit(0)
	}()

	finished := make(chan struct{})
	go readControl(conn, finished)

	sent := 0
	for offset := 0; offset < len(pcm); offset += chunkBytes {
		end := min(offset+chunkBytes, len(pcm))
		chunk := pcm[offset:end]
		if len(chunk) == transport.EndOfTurnSize {
			chunk = append(chunk, 0)
		}

		if err := write(websocket.BinaryMessage, chunk); err != nil {
			log.Fatal("write chunk: ", err)
		}
		sent++

		frames := len(chunk) / shared.BytesPerSample
		time.Sleep(render.FramesToDuration(frames, shared.SampleRate) / 2)
	}

	if err := write(websocket.BinaryMessage, make([]byte, transport.EndOfTurnSize)); err != nil {
		log.Fatal("write end of turn: ", err)
	}
	fmt.Printf("[SEND] Sent %d chunks (%d bytes), waiting for finish-playing\n", sent, len(pcm))

	select {
	case <-finished:
	case <-time.After(render.FramesToDuration(len(pcm)/shared.BytesPerSample, shared.SampleRate) + 30*time.Second):
		fmt.Println("[SEND] Timed out waiting for finish-playing")
	}

	_ = write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func loadPCM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return data, nil
	}

	pcm, rate, err := audio.ExtractPCM(data)
	if err != nil {
		return nil, err
	}
	if rate != shared.SampleRate {
		return nil, fmt.Errorf("expected %d Hz audio, got %d Hz", shared.SampleRate, rate)
	}
	return pcm, nil
}

func readControl(conn *websocket.Conn, finished chan<- struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Printf("[SEND] Read error: %v\n", err)
			return
		}

		msg, err := transport.ParseControlMessage(data)
		if err != nil {
			fmt.Printf("[SEND] Unparseable message: %s\n", string(data))
			continue
		}

		switch msg.Header.Action {
		case transport.ActionPlayingProgress:
			fmt.Printf("[SEND] progress turn=%v played=%v\n", msg.Payload.Input["turn"], msg.Payload.Input["played"])
		case transport.ActionFinishPlaying:
			fmt.Printf("[SEND] finished turn=%v received=%v recorded=%v\n",
				msg.Payload.Input["turn"], msg.Payload.Input["received_audio"], msg.Payload.Input["recorded_audio"])
			close(finished)
			return
		default:
			fmt.Printf("[SEND] %s: %s\n", msg.Header.Action, string(data))
		}
	}
}
