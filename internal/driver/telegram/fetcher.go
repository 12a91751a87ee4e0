package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"minigram/pkg/minigram"
	"minigram/pkg/normalize"
)

const defaultFetchTimeout = 3 * time.Second

// fetchRPC abstracts the gotd RPC surface the fetch service uses, narrow
// enough to fake in tests.
type fetchRPC interface {
	UsersGetUsers(ctx context.Context, ids []tg.InputUserClass) ([]tg.UserClass, error)
	MessagesGetMessages(ctx context.Context, ids []tg.InputMessageClass) (tg.MessagesMessagesClass, error)
	ChannelsGetMessages(ctx context.Context, request *tg.ChannelsGetMessagesRequest) (tg.MessagesMessagesClass, error)
}

var _ fetchRPC = (*tg.Client)(nil)

// EngineOption mutates engine configuration.
type EngineOption func(*engineConfig)

type engineConfig struct {
	fetchTimeout      time.Duration
	logger            *slog.Logger
	normalizerOptions []normalize.Option
}

// WithFetchTimeout bounds each remote lookup RPC.
func WithFetchTimeout(timeout time.Duration) EngineOption {
	return func(cfg *engineConfig) {
		if timeout > 0 {
			cfg.fetchTimeout = timeout
		}
	}
}

// WithLogger configures structured logging for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(cfg *engineConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithNormalizerOptions forwards extra options to the wrapped normalizer.
func WithNormalizerOptions(options ...normalize.Option) EngineOption {
	return func(cfg *engineConfig) {
		cfg.normalizerOptions = append(cfg.normalizerOptions, options...)
	}
}

// FetchService implements the normalizer's remote collaborators over gotd
// RPC: batch user lookups and single-message fetches routed by chat-id
// encoding.
type FetchService struct {
	cfg        engineConfig
	rpc        fetchRPC
	normalizer *normalize.Normalizer
}

var (
	_ normalize.UserFetcher    = (*FetchService)(nil)
	_ normalize.MessageFetcher = (*FetchService)(nil)
)

// NewEngine wires a normalizer to a gotd invoker so entity lookups and reply
// chains resolve remotely. Messages fetched for reply resolution pass through
// the same normalizer and land in its cache.
func NewEngine(invoker tg.Invoker, options ...EngineOption) (*normalize.Normalizer, error) {
	if invoker == nil {
		return nil, fmt.Errorf("new telegram engine: nil invoker")
	}

	return newEngineWithRPC(tg.NewClient(invoker), options...)
}

func newEngineWithRPC(rpc fetchRPC, options ...EngineOption) (*normalize.Normalizer, error) {
	if rpc == nil {
		return nil, fmt.Errorf("new telegram engine: nil rpc adapter")
	}

	cfg := engineConfig{
		fetchTimeout: defaultFetchTimeout,
		logger:       slog.Default(),
	}
	for _, option := range options {
		option(&cfg)
	}

	service := &FetchService{cfg: cfg, rpc: rpc}
	normalizerOptions := append([]normalize.Option{
		normalize.WithUserFetcher(service),
		normalize.WithMessageFetcher(service),
		normalize.WithLogger(cfg.logger),
	}, cfg.normalizerOptions...)
	service.normalizer = normalize.New(normalizerOptions...)

	return service.normalizer, nil
}

// FetchUsers loads users by bare id in one batch call.
func (s *FetchService) FetchUsers(ctx context.Context, ids []int64) ([]tg.UserClass, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	refs := make([]tg.InputUserClass, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, &tg.InputUser{UserID: id})
	}

	users, err := s.rpc.UsersGetUsers(ctx, refs)
	if err != nil {
		return nil, mapFetchError("fetch users", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("fetch users: %w", minigram.ErrPeerNotFound)
	}

	return users, nil
}

// FetchMessage loads one message and returns it normalized. Channel-encoded
// chat ids route through the channel endpoint; everything else uses the
// generic one.
func (s *FetchService) FetchMessage(ctx context.Context, chatID int64, messageID int, replyDepth int) (*minigram.Message, error) {
	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: messageID}}

	rpcCtx, cancel := s.callContext(ctx)
	var (
		result tg.MessagesMessagesClass
		err    error
	)
	if normalize.IsChannelChatID(chatID) {
		result, err = s.rpc.ChannelsGetMessages(rpcCtx, &tg.ChannelsGetMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: normalize.ChannelIDFromChatID(chatID)},
			ID:      ids,
		})
	} else {
		result, err = s.rpc.MessagesGetMessages(rpcCtx, ids)
	}
	cancel()
	if err != nil {
		return nil, mapFetchError("fetch message", err)
	}

	modified, ok := result.AsModified()
	if !ok {
		return nil, fmt.Errorf("fetch message: %w", minigram.ErrMessageNotFound)
	}

	messages := modified.GetMessages()
	if len(messages) == 0 {
		return nil, fmt.Errorf("fetch message: %w", minigram.ErrMessageNotFound)
	}
	raw := messages[0]
	if _, empty := raw.(*tg.MessageEmpty); empty {
		return nil, fmt.Errorf("fetch message: %w", minigram.ErrMessageNotFound)
	}

	tables := normalize.Tables{
		Users: normalize.IndexUsers(modified.GetUsers()),
		Chats: normalize.IndexChats(modified.GetChats()),
	}

	msg, err := s.normalizer.Normalize(ctx, raw, tables, normalize.WithReplyDepth(replyDepth))
	if err != nil {
		return nil, fmt.Errorf("fetch message: %w", err)
	}

	return msg, nil
}

func (s *FetchService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.fetchTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.fetchTimeout)
}

// mapFetchError folds the RPC error surface into the two sentinel failures
// the normalizer knows how to recover from. Everything else passes through
// wrapped.
func mapFetchError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if rpcErr, ok := tgerr.As(err); ok {
		errorType := strings.ToUpper(strings.TrimSpace(rpcErr.Type))
		switch {
		case strings.Contains(errorType, "PEER_ID_INVALID"),
			strings.Contains(errorType, "USER_ID_INVALID"):
			return fmt.Errorf("%s: %w", operation, minigram.ErrPeerNotFound)
		case strings.Contains(errorType, "MESSAGE_IDS_EMPTY"),
			strings.Contains(errorType, "MSG_ID_INVALID"),
			strings.Contains(errorType, "CHANNEL_INVALID"),
			strings.Contains(errorType, "CHANNEL_PRIVATE"):
			return fmt.Errorf("%s: %w", operation, minigram.ErrMessageNotFound)
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
