package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trainvoc-room-service/internal/client"
	"trainvoc-room-service/internal/poller"
)

// NewWatchCmd follows the directory or a room the way a player's client would.
func NewWatchCmd() *cobra.Command {
	var (
		server   string
		room     string
		playerID string
		status   string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll a running server and log every view change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, server, room, playerID, status)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "room service base URL")
	cmd.Flags().StringVar(&room, "room", "", "room code to follow; empty follows the room list")
	cmd.Flags().StringVar(&playerID, "player", "", "player id to view as")
	cmd.Flags().StringVar(&status, "status", "available", "room list filter")
	return cmd
}

func runWatch(ctx context.Context, server, room, playerID, status string) error {
	loop := poller.New(client.New(server), poller.Options{
		PlayerID:   playerID,
		RoomStatus: status,
		OnUpdate:   logView,
	})
	if room != "" {
		loop.EnterRoom(room)
	}
	err := loop.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func logView(v poller.View) {
	if v.Error != "" {
		log.Warn().Str("mode", v.Mode.String()).Str("room", v.RoomCode).Msg(v.Error)
		return
	}
	ev := log.Info().Str("mode", v.Mode.String())
	switch {
	case v.Game != nil && v.Mode == poller.ModeGame:
		ev = ev.Str("room", v.RoomCode).
			Str("phase", v.Game.State.String()).
			Int("question", v.Game.CurrentQuestionIndex).
			Int("players", len(v.Game.Players))
		if v.Game.RemainingTime != nil {
			ev = ev.Int("remaining", *v.Game.RemainingTime)
		}
	case v.Lobby != nil:
		ev = ev.Str("room", v.RoomCode).
			Str("status", string(v.Lobby.Status)).
			Int("players", len(v.Lobby.Players))
	default:
		ev = ev.Int("rooms", len(v.Rooms))
	}
	ev.Msg("view updated")
}
