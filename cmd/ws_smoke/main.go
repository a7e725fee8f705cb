package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"reflex_drills/internal/logger"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type snapshot struct {
	Phase string          `json:"phase"`
	Trial int             `json:"trial"`
	Total int             `json:"total"`
	Score int             `json:"score"`
	Spec  json.RawMessage `json:"spec"`
	Last  json.RawMessage `json:"last"`

	Summary json.RawMessage `json:"summary"`
}

// answers per drill; the smoke run only checks the protocol, not the score
var answers = map[string]string{
	"arrow":   "up",
	"scan":    "submit",
	"striker": "shoot",
}

func main() {
	kind := flag.String("game", "striker", "drill to play: arrow, scan or striker")
	timeout := flag.Duration("timeout", 2*time.Minute, "give up after this long")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), false)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	answer, ok := answers[*kind]
	if !ok {
		logger.Fatal("unknown game", "game", *kind)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "127.0.0.1:" + port

	resp, err := http.Post("http://"+base+"/api/v1/auth/guest", "application/json", nil)
	if err != nil {
		logger.Fatal("guest auth", "error", err)
	}
	var auth struct {
		PlayerID string `json:"player_id"`
		Token    string `json:"token"`
	}
	err = json.NewDecoder(resp.Body).Decode(&auth)
	resp.Body.Close()
	if err != nil || auth.Token == "" {
		logger.Fatal("guest auth response", "status", resp.StatusCode, "error", err)
	}
	logger.Info("guest player", "player", auth.PlayerID)

	wsURL := fmt.Sprintf("ws://%s/ws?token=%s&game=%s", base, auth.Token, *kind)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		logger.Fatal("dial", "error", err)
	}
	defer conn.Close()

	send := func(msgType, value string) {
		msg := map[string]any{"type": msgType}
		if value != "" {
			msg["value"] = value
			msg["ts"] = time.Now().UnixMilli()
		}
		if err := conn.WriteJSON(msg); err != nil {
			logger.Fatal("write", "error", err)
		}
	}

	deadline := time.Now().Add(*timeout)
	answered := 0
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			logger.Fatal("read", "error", err)
		}

		switch msg.Type {
		case "ready":
			logger.Info("ready", "payload", string(msg.Payload))
			send("start", "")
		case "error":
			logger.Warn("server error", "payload", string(msg.Payload))
		case "snapshot":
			var snap snapshot
			if err := json.Unmarshal(msg.Payload, &snap); err != nil {
				logger.Fatal("bad snapshot", "error", err)
			}
			switch snap.Phase {
			case "response_open":
				if answered < snap.Trial {
					answered = snap.Trial
					send("input", answer)
				}
			case "feedback":
				logger.Info("trial", "trial", snap.Trial, "total", snap.Total, "score", snap.Score, "outcome", string(snap.Last))
			case "terminal":
				fmt.Println(string(snap.Summary))
				logger.Info("smoke test finished", "score", snap.Score)
				return
			}
		}
	}

	logger.Fatal("smoke test timed out", "answered", answered)
}
