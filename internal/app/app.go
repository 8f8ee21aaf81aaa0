// Package app wires configuration, local state, the REST client and the
// realtime room pipeline together for the CLI commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/talkgym/talkgym-client/internal/api"
	"github.com/talkgym/talkgym-client/internal/audio"
	"github.com/talkgym/talkgym-client/internal/auth"
	"github.com/talkgym/talkgym-client/internal/config"
	"github.com/talkgym/talkgym-client/internal/room"
	"github.com/talkgym/talkgym-client/internal/state"
	"github.com/talkgym/talkgym-client/internal/transcribe"
	"github.com/talkgym/talkgym-client/internal/view"
)

// App holds the long-lived client pieces shared by all commands.
type App struct {
	cfg   config.Config
	log   *zerolog.Logger
	store *state.Store
	api   *api.Client
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := state.Open(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("init local state: %w", err)
	}
	logger.Debug().Str("state_path", cfg.StatePath).Msg("local state opened")

	client := api.NewClient(cfg.APIBaseURL, st, cfg.UploadTimeout, logger)

	return &App{
		cfg:   cfg,
		log:   logger,
		store: st,
		api:   client,
	}, nil
}

// Close releases local resources.
func (a *App) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close local state")
	}
}

// API exposes the REST client.
func (a *App) API() *api.Client { return a.api }

// Store exposes the local state store.
func (a *App) Store() *state.Store { return a.store }

// Config exposes the resolved configuration.
func (a *App) Config() config.Config { return a.cfg }

// Identity resolves the local user from the persisted token.
func (a *App) Identity() (*auth.Identity, error) {
	token, err := a.store.Token()
	if err != nil {
		return nil, err
	}
	id, err := auth.FromToken(token)
	if err != nil {
		return nil, err
	}
	if id.Expired(time.Now()) {
		return nil, fmt.Errorf("stored token expired, log in again")
	}
	return id, nil
}

// RecognitionEngine builds the speech engine selected by configuration. An
// unconfigured or unknown provider yields the unavailable variant, which the
// live transcriber treats as a silent capability gap.
func (a *App) RecognitionEngine() transcribe.Engine {
	switch a.cfg.Speech.Provider {
	case "deepgram":
		return transcribe.NewDeepgramEngine(a.cfg.Speech.DeepgramKey, a.log)
	case "whisper":
		// Whisper has no streaming session; the one-shot clip fallback
		// transcribes the finalized capture instead.
		return transcribe.Unavailable()
	default:
		return transcribe.Unavailable()
	}
}

// ClipFallback returns the one-shot clip transcriber for the whisper
// provider, nil for every other provider or when the key is missing.
func (a *App) ClipFallback() *transcribe.ClipTranscriber {
	if a.cfg.Speech.Provider != "whisper" {
		return nil
	}
	return transcribe.NewClipTranscriber(a.cfg.Speech.OpenAIKey, a.log)
}

// RoomVisit is one live attachment to a session room.
type RoomVisit struct {
	Session    *api.Session
	Sync       *room.Synchronizer
	Controller *view.Controller

	cancel context.CancelFunc
	runErr chan error
}

// EnterRoom fetches the session, seeds its AI roster, connects to the
// realtime channel and starts the recording pipeline. The returned visit owns
// the connection until Leave.
func (a *App) EnterRoom(ctx context.Context, sessionID string, device audio.CaptureDevice) (*RoomVisit, error) {
	identity, err := a.Identity()
	if err != nil {
		return nil, err
	}

	session, err := a.api.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	st := room.NewState()
	a.seedBots(ctx, session, st)

	visitCtx, cancel := context.WithCancel(ctx)

	conn, err := room.Dial(visitCtx, a.cfg.SocketURL)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", api.ErrJoinFailed, err)
	}

	sync := room.NewSynchronizer(conn, st, room.Identity{
		UserID:   identity.UserID,
		UserName: identity.Username,
	}, session.ID, a.log)

	if err := sync.Join(visitCtx); err != nil {
		sync.Leave()
		cancel()
		return nil, fmt.Errorf("%w: %v", api.ErrJoinFailed, err)
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- sync.Run(visitCtx)
	}()

	recorder := audio.NewRecorder(device, a.log)
	live := transcribe.NewLive(a.RecognitionEngine(), a.log)

	// A missing fallback stays a nil interface, not a typed nil.
	var clips view.ClipTranscriber
	if fallback := a.ClipFallback(); fallback != nil {
		clips = fallback
	}
	controller := view.NewController(visitCtx, recorder, live, a.api, clips, sync, a.cfg.Language, a.log)

	if err := a.store.RememberSession(ctx, state.CachedSession{
		ID:            session.ID,
		Title:         session.Title,
		Topic:         session.Topic,
		Type:          session.Type,
		Status:        session.Status,
		ShareableCode: session.ShareableCode,
	}); err != nil {
		a.log.Warn().Err(err).Msg("cache session")
	}

	return &RoomVisit{
		Session:    session,
		Sync:       sync,
		Controller: controller,
		cancel:     cancel,
		runErr:     runErr,
	}, nil
}

// seedBots installs the session's AI personas into the roster before any
// socket traffic, falling back to generic names when the backend has not
// initialized them yet.
func (a *App) seedBots(ctx context.Context, session *api.Session, st *room.State) {
	if session.AIParticipants <= 0 {
		return
	}

	bots, err := a.api.SessionBots(ctx, session.ID)
	if err != nil || len(bots) == 0 {
		if err != nil {
			a.log.Debug().Err(err).Msg("bots not initialized, using generic names")
		}
		bots = api.GenericBots(session.AIParticipants)
	}

	personas := make([]room.Participant, 0, len(bots))
	for _, b := range bots {
		personas = append(personas, room.Automated("ai-"+b.ID, b.ID, b.Name))
	}
	st.SeedAutomated(personas)
}

// Leave tears down the visit: recording pipeline first, then the channel.
func (v *RoomVisit) Leave() {
	v.Controller.Close()
	v.Sync.Leave()
	v.cancel()
	<-v.runErr
}

// Done exposes the synchronizer's terminal error, if any.
func (v *RoomVisit) Done() <-chan error {
	return v.runErr
}
