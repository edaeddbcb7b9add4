package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-media-relay/internal/domain"
	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/adapter"
	"telegram-media-relay/internal/domain/ports/repository"
	"telegram-media-relay/internal/infra/i18n"
	"telegram-media-relay/internal/infra/logging"
	"telegram-media-relay/internal/infra/metrics"
)

// broadcastCommand starts the operator's composition flow.
const broadcastCommand = "/broadcast"

// InboundMessage is a normalized incoming chat message. At most one of
// PhotoFileID/VideoFileID is set; Caption accompanies media only.
type InboundMessage struct {
	ChatID      int64
	Username    string
	Text        string
	PhotoFileID string
	VideoFileID string
	Caption     string
}

// InboundCallback is a normalized inline-button press.
type InboundCallback struct {
	ChatID     int64
	CallbackID string
	Data       string
}

// Compile-time check
var _ FlowUseCase = (*flowUC)(nil)

// FlowUseCase is the per-chat state machine driving both multi-step
// flows: operator broadcast composition and member link selection.
type FlowUseCase interface {
	HandleMessage(ctx context.Context, msg InboundMessage) error
	HandleCallback(ctx context.Context, cb InboundCallback) error
}

type flowUC struct {
	sessions   repository.SessionRepository
	recipients repository.RecipientRepository
	access     AccessUseCase
	broadcast  BroadcastUseCase
	resolvers  map[model.LinkDomain]adapter.LinkResolver
	bot        adapter.BotAdapter
	tr         *i18n.Translator
	channel    string
	log        *zerolog.Logger

	// chatLocks serializes events per chat: polling workers may pick up
	// two updates for the same chat concurrently, and the session record
	// has a single-writer invariant.
	chatLocks sync.Map // int64 -> *sync.Mutex
}

func NewFlowUseCase(
	sessions repository.SessionRepository,
	recipients repository.RecipientRepository,
	access AccessUseCase,
	broadcast BroadcastUseCase,
	resolvers map[model.LinkDomain]adapter.LinkResolver,
	bot adapter.BotAdapter,
	tr *i18n.Translator,
	channel string,
	logger *zerolog.Logger,
) *flowUC {
	return &flowUC{
		sessions:   sessions,
		recipients: recipients,
		access:     access,
		broadcast:  broadcast,
		resolvers:  resolvers,
		bot:        bot,
		tr:         tr,
		channel:    channel,
		log:        logger,
	}
}

func (f *flowUC) lockChat(chatID int64) func() {
	v, _ := f.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// HandleMessage advances the chat's flow for one inbound message.
// All failures are converted to a user-facing reply or a no-op; the
// returned error is for handler logging only, never fatal.
func (f *flowUC) HandleMessage(ctx context.Context, msg InboundMessage) error {
	ctx = logging.WithTraceID(logging.WithChatID(ctx, msg.ChatID), uuid.NewString())
	log := logging.With(ctx, f.log)
	defer logging.TraceDuration(log, "FlowUC.HandleMessage")()

	unlock := f.lockChat(msg.ChatID)
	defer unlock()

	f.trackRecipient(ctx, msg, log)

	if f.access.IsOperator(msg.ChatID) {
		return f.handleOperatorMessage(ctx, msg, log)
	}
	return f.handleMemberMessage(ctx, msg, log)
}

// trackRecipient records the sender for future broadcasts. Best-effort:
// a storage failure must not block the flow.
func (f *flowUC) trackRecipient(ctx context.Context, msg InboundMessage, log *zerolog.Logger) {
	rcpt, err := model.NewRecipient(msg.ChatID, msg.Username)
	if err != nil {
		return
	}
	if err := f.recipients.Upsert(ctx, rcpt); err != nil {
		log.Warn().Err(err).Msg("failed to track recipient")
	}
}

// ----- operator / broadcast branch -----

func (f *flowUC) handleOperatorMessage(ctx context.Context, msg InboundMessage, log *zerolog.Logger) error {
	if strings.TrimSpace(msg.Text) == broadcastCommand {
		if err := f.sessions.Set(ctx, msg.ChatID, model.NewBroadcastSession()); err != nil {
			return err
		}
		return f.bot.SendMessage(ctx, msg.ChatID, f.tr.T("broadcast_prompt_content"))
	}

	sess, err := f.sessions.Get(ctx, msg.ChatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No flow in progress; the operator chat is exempt from the
			// membership/link branch, so there is nothing to do.
			log.Debug().Msg("operator message outside broadcast flow ignored")
			return nil
		}
		return err
	}

	switch sess.Flow {
	case model.FlowBroadcastContent:
		sess.Broadcast.Content = captureContent(msg)
		sess.Flow = model.FlowBroadcastButton
		sess.Touch()
		if err := f.sessions.Set(ctx, msg.ChatID, sess); err != nil {
			return err
		}
		return f.bot.SendMessage(ctx, msg.ChatID, f.tr.T("broadcast_prompt_button"))

	case model.FlowBroadcastButton:
		button := parseButtonSpec(msg.Text)
		report, err := f.broadcast.Dispatch(ctx, sess.Broadcast.Content, button)
		// The composition is over either way; a dangling session would
		// swallow the operator's next messages.
		if clearErr := f.sessions.Clear(ctx, msg.ChatID); clearErr != nil {
			log.Warn().Err(clearErr).Msg("failed to clear broadcast session")
		}
		if err != nil {
			return err
		}
		return f.bot.SendMessage(ctx, msg.ChatID,
			f.tr.T("broadcast_report", report.Delivered, len(report.Failures)))

	default:
		// A link-selection session in the operator chat cannot advance by
		// text; ignore like any other non-command operator message.
		log.Debug().Str("flow", string(sess.Flow)).Msg("operator message ignored")
		return nil
	}
}

// captureContent turns the operator's message into the broadcast payload.
// Media wins over text; a photo message carries the largest-size file id.
func captureContent(msg InboundMessage) model.BroadcastContent {
	switch {
	case msg.PhotoFileID != "":
		return model.BroadcastContent{Kind: model.ContentPhoto, FileID: msg.PhotoFileID, Caption: msg.Caption}
	case msg.VideoFileID != "":
		return model.BroadcastContent{Kind: model.ContentVideo, FileID: msg.VideoFileID, Caption: msg.Caption}
	default:
		return model.BroadcastContent{Kind: model.ContentText, Body: msg.Text}
	}
}

// parseButtonSpec parses the operator's button reply. "no" (any case)
// skips the button; "Label|URL" with exactly two segments adds one.
// Anything else silently degrades to no button.
func parseButtonSpec(text string) *model.InlineButton {
	if strings.EqualFold(strings.TrimSpace(text), "no") {
		return nil
	}
	parts := strings.Split(text, "|")
	if len(parts) != 2 {
		return nil
	}
	return &model.InlineButton{
		Label: strings.TrimSpace(parts[0]),
		URL:   strings.TrimSpace(parts[1]),
	}
}

// ----- member / link branch -----

func (f *flowUC) handleMemberMessage(ctx context.Context, msg InboundMessage, log *zerolog.Logger) error {
	if !f.access.IsMember(ctx, msg.ChatID) {
		metrics.IncJoinPrompt()
		rows := [][]adapter.InlineButton{{{
			Text: f.tr.T("join_button"),
			URL:  "https://t.me/" + strings.TrimPrefix(f.channel, "@"),
		}}}
		return f.bot.SendButtons(ctx, msg.ChatID, f.tr.T("join_required"), rows)
	}

	domainKind, ok := model.ClassifyLink(msg.Text)
	if !ok {
		return f.bot.SendMessage(ctx, msg.ChatID, f.tr.T("usage_hint"))
	}

	resolver, ok := f.resolvers[domainKind]
	if !ok {
		log.Error().Str("domain", string(domainKind)).Msg("no resolver registered for domain")
		return f.sendFetchFailed(ctx, msg.ChatID, domainKind)
	}

	start := time.Now()
	resolved, err := resolver.Resolve(ctx, strings.TrimSpace(msg.Text))
	metrics.ObserveResolution(string(domainKind), int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		log.Info().Err(err).Str("domain", string(domainKind)).Msg("link resolution failed")
		return f.sendFetchFailed(ctx, msg.ChatID, domainKind)
	}

	// Overwrites any existing session, including a previous link selection.
	if err := f.sessions.Set(ctx, msg.ChatID, model.NewLinkSession(domainKind, *resolved)); err != nil {
		return err
	}
	return f.sendVariantMenu(ctx, msg.ChatID, domainKind)
}

func (f *flowUC) sendFetchFailed(ctx context.Context, chatID int64, d model.LinkDomain) error {
	key := "fetch_failed_youtube"
	if d == model.DomainInstagram {
		key = "fetch_failed_instagram"
	}
	return f.bot.SendMessage(ctx, chatID, f.tr.T(key))
}

func (f *flowUC) sendVariantMenu(ctx context.Context, chatID int64, d model.LinkDomain) error {
	if d == model.DomainInstagram {
		rows := [][]adapter.InlineButton{{
			{Text: "Video", Data: model.CallbackPrefixInstagram + "video"},
			{Text: "Audio (MP3)", Data: model.CallbackPrefixInstagram + model.AudioVariant},
		}}
		return f.bot.SendButtons(ctx, chatID, f.tr.T("select_format_instagram"), rows)
	}
	rows := [][]adapter.InlineButton{
		{
			{Text: "Video 720p", Data: model.CallbackPrefixYouTube + "720p"},
			{Text: "Video 360p", Data: model.CallbackPrefixYouTube + "360p"},
		},
		{
			{Text: "Audio (MP3)", Data: model.CallbackPrefixYouTube + model.AudioVariant},
		},
	}
	return f.bot.SendButtons(ctx, chatID, f.tr.T("select_format"), rows)
}

// ----- callbacks -----

// HandleCallback serves a variant selection. Stale callbacks (no session,
// wrong flow, or wrong domain prefix) are acknowledged and dropped.
func (f *flowUC) HandleCallback(ctx context.Context, cb InboundCallback) error {
	ctx = logging.WithTraceID(logging.WithChatID(ctx, cb.ChatID), uuid.NewString())
	log := logging.With(ctx, f.log)
	defer logging.TraceDuration(log, "FlowUC.HandleCallback")()

	// Stop the Telegram spinner whatever happens next.
	if err := f.bot.AnswerCallback(ctx, cb.CallbackID); err != nil {
		log.Debug().Err(err).Msg("failed to answer callback")
	}

	unlock := f.lockChat(cb.ChatID)
	defer unlock()

	sess, err := f.sessions.Get(ctx, cb.ChatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncStaleCallback()
			return nil
		}
		return err
	}
	if sess.Flow != model.FlowLinkPending || sess.Link == nil {
		metrics.IncStaleCallback()
		return nil
	}

	prefix := sess.Link.Domain.CallbackPrefix()
	if !strings.HasPrefix(cb.Data, prefix) {
		// Callback from a superseded flow (e.g. Instagram buttons while a
		// YouTube link is stored). No reply, no mutation.
		metrics.IncStaleCallback()
		return nil
	}

	key := strings.TrimPrefix(cb.Data, prefix)
	url, ok := sess.Link.Resolved.Variant(key)
	if !ok {
		return f.bot.SendMessage(ctx, cb.ChatID,
			f.tr.T("variant_unavailable", variantDisplay(sess.Link.Domain, key)))
	}

	metrics.IncVariantServed(string(sess.Link.Domain), key)

	// The session stays link-pending so the user can pick more variants;
	// only a new link submission supersedes it.
	sess.Touch()
	if err := f.sessions.Set(ctx, cb.ChatID, sess); err != nil {
		log.Warn().Err(err).Msg("failed to refresh link session")
	}

	rows := [][]adapter.InlineButton{{{
		Text: f.variantButtonLabel(sess.Link.Domain, key),
		URL:  url,
	}}}
	return f.bot.SendButtons(ctx, cb.ChatID, f.tr.T("download_link"), rows)
}

func (f *flowUC) variantButtonLabel(d model.LinkDomain, key string) string {
	if d == model.DomainInstagram {
		if key == model.AudioVariant {
			return f.tr.T("download_instagram_audio")
		}
		return f.tr.T("download_instagram_video")
	}
	if key == model.AudioVariant {
		return f.tr.T("download_audio")
	}
	return f.tr.T("download_video", key)
}

// variantDisplay names a variant in "not available" replies.
func variantDisplay(d model.LinkDomain, key string) string {
	switch {
	case key == model.AudioVariant:
		return "Audio"
	case d == model.DomainInstagram:
		return "Video"
	default:
		return key
	}
}
