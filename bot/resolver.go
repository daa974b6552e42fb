package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"parley/models"
	"parley/service"
)

// messageFetcher is the slice of the session API the resolver needs, kept
// narrow so tests can stand in for it
type messageFetcher interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// Resolver turns raw inbound messages into query requests: deciding whether
// a message continues a stored thread (explicit reply or pasted deep link),
// quotes someone else's message, or starts a fresh thread, and extracting
// the effective prompt text.
type Resolver struct {
	fetcher       messageFetcher
	conversations service.ConversationService
	botUserID     string
	mentions      []string
}

// NewResolver creates a resolver for the bot identified by botUserID
func NewResolver(fetcher messageFetcher, conversations service.ConversationService, botUserID string) *Resolver {
	return &Resolver{
		fetcher:       fetcher,
		conversations: conversations,
		botUserID:     botUserID,
		// Both mention forms the platform produces for one user.
		mentions: []string{"<@" + botUserID + ">", "<@!" + botUserID + ">"},
	}
}

// Resolve maps an inbound message to a query request. The second return is
// false when the event is not addressed to the bot or cannot be resolved;
// such events are dropped without any user-visible output.
func (r *Resolver) Resolve(ctx context.Context, m *discordgo.MessageCreate) (*service.QueryRequest, bool) {
	authorID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing author ID %s: %v", m.Author.ID, err)
		return nil, false
	}
	message, ok := parseRef(m.GuildID, m.ChannelID, m.ID)
	if !ok {
		return nil, false
	}

	if m.MessageReference != nil {
		return r.resolveReply(ctx, m, authorID, message)
	}

	text, mentioned := r.stripMention(m.Content)
	if !mentioned {
		return nil, false
	}

	if parent, rest, ok := parseMessageLink(text); ok {
		return r.resolveLink(ctx, m, authorID, message, parent, rest, text)
	}

	if text == "" {
		return nil, false
	}
	return &service.QueryRequest{UserID: authorID, Message: message, Prompt: text}, true
}

// resolveReply handles messages sent through the platform's reply relation.
// A reply to one of the bot's own stored replies continues that thread; a
// reply to anything else only addresses the bot when it also carries a
// mention, and then quotes the referenced text into a fresh prompt.
func (r *Resolver) resolveReply(ctx context.Context, m *discordgo.MessageCreate, authorID int64, message models.MessageRef) (*service.QueryRequest, bool) {
	referenced := m.ReferencedMessage
	if referenced == nil {
		var err error
		referenced, err = r.fetcher.ChannelMessage(m.MessageReference.ChannelID, m.MessageReference.MessageID)
		if err != nil {
			log.WithError(err).Debug("Dropping reply, referenced message unavailable")
			return nil, false
		}
	}

	if referenced.Author != nil && referenced.Author.ID == r.botUserID {
		parent, ok := parseRef(m.GuildID, m.ChannelID, referenced.ID)
		if !ok {
			return nil, false
		}
		own, err := r.conversations.IsOwnReply(ctx, parent.MessageID)
		if err != nil {
			log.WithError(err).Error("Error checking conversation membership")
			return nil, false
		}
		if !own {
			log.WithField("messageID", referenced.ID).Debug("Dropping reply to unrecorded bot message")
			return nil, false
		}
		prompt := strings.TrimSpace(m.Content)
		if prompt == "" {
			return nil, false
		}
		return &service.QueryRequest{UserID: authorID, Message: message, Prompt: prompt, Parent: &parent}, true
	}

	// Replying to a third party only reaches the bot via a mention.
	text, mentioned := r.stripMention(m.Content)
	if !mentioned {
		return nil, false
	}
	prompt, ok := r.quote(text, referenced.Content)
	if !ok {
		return nil, false
	}
	return &service.QueryRequest{UserID: authorID, Message: message, Prompt: prompt}, true
}

// resolveLink handles a leading deep link in the message text. A link to a
// stored bot reply continues that thread; any other reachable target is
// quoted; an unreachable target falls back to the plain text as if no link
// were there. Either way the link is only acted on when the asker could read
// the target directly: same guild, and view permission on another channel.
func (r *Resolver) resolveLink(ctx context.Context, m *discordgo.MessageCreate, authorID int64, message models.MessageRef, parent models.MessageRef, rest, fullText string) (*service.QueryRequest, bool) {
	own, err := r.conversations.IsOwnReply(ctx, parent.MessageID)
	if err != nil {
		log.WithError(err).Error("Error checking conversation membership")
		return nil, false
	}

	if strconv.FormatInt(parent.GuildID, 10) != m.GuildID {
		log.WithField("guildID", parent.GuildID).Debug("Dropping cross-guild message link")
		return nil, false
	}
	linkChannel := strconv.FormatInt(parent.ChannelID, 10)
	if linkChannel != m.ChannelID {
		perms, err := r.fetcher.UserChannelPermissions(m.Author.ID, linkChannel)
		if err != nil || perms&discordgo.PermissionViewChannel == 0 {
			log.WithField("channelID", parent.ChannelID).Debug("Dropping link to channel the user cannot read")
			return nil, false
		}
	}

	if own {
		if rest == "" {
			return nil, false
		}
		return &service.QueryRequest{UserID: authorID, Message: message, Prompt: rest, Parent: &parent}, true
	}

	target, err := r.fetcher.ChannelMessage(linkChannel, strconv.FormatInt(parent.MessageID, 10))
	if err != nil {
		// Unreachable target: treat the message as if it held no link.
		if fullText == "" {
			return nil, false
		}
		return &service.QueryRequest{UserID: authorID, Message: message, Prompt: fullText}, true
	}

	prompt, ok := r.quote(rest, target.Content)
	if !ok {
		return nil, false
	}
	return &service.QueryRequest{UserID: authorID, Message: message, Prompt: prompt}, true
}

// quote combines the user's own text with a quoted message. When the user
// added nothing of their own, the quoted text stands alone, with any bot
// mention stripped in case it was a forwarded prompt.
func (r *Resolver) quote(text, quoted string) (string, bool) {
	quoted = strings.TrimSpace(quoted)
	if text == "" {
		stripped, _ := r.stripMention(quoted)
		if stripped == "" {
			return "", false
		}
		return stripped, true
	}
	if quoted == "" {
		return text, true
	}
	return text + " \"" + quoted + "\"", true
}

// stripMention removes exactly one bot mention from the start or end of the
// text. The second return reports whether a mention was found there; a
// mention in the middle of the text does not address the bot.
func (r *Resolver) stripMention(content string) (string, bool) {
	content = strings.TrimSpace(content)
	for _, mention := range r.mentions {
		if rest, ok := strings.CutPrefix(content, mention); ok {
			return strings.TrimSpace(rest), true
		}
		if rest, ok := strings.CutSuffix(content, mention); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return content, false
}

// parseRef converts the platform's string identifiers to a message reference
func parseRef(guildID, channelID, messageID string) (models.MessageRef, bool) {
	g, err1 := strconv.ParseInt(guildID, 10, 64)
	c, err2 := strconv.ParseInt(channelID, 10, 64)
	m, err3 := strconv.ParseInt(messageID, 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return models.MessageRef{}, false
	}
	return models.MessageRef{GuildID: g, ChannelID: c, MessageID: m}, true
}

// parseMessageLink matches a message deep link at the very start of text:
// https://discord.com/channels/<guild>/<channel>/<message>, optionally on
// the ptb. or canary. host, terminated by a space. Returns the target, the
// text after the link, and whether a complete link was found; a link running
// to the end of the text is not a match and stays part of the prompt.
func parseMessageLink(text string) (models.MessageRef, string, bool) {
	var rest string
	matched := false
	for _, prefix := range []string{
		"https://discord.com/channels/",
		"https://ptb.discord.com/channels/",
		"https://canary.discord.com/channels/",
	} {
		if r, ok := strings.CutPrefix(text, prefix); ok {
			rest = r
			matched = true
			break
		}
	}
	if !matched {
		return models.MessageRef{}, "", false
	}

	idx := strings.IndexByte(rest, ' ')
	if idx < 0 {
		return models.MessageRef{}, "", false
	}
	path := rest[:idx]
	rest = strings.TrimSpace(rest[idx+1:])

	parts := strings.Split(path, "/")
	if len(parts) != 3 {
		return models.MessageRef{}, "", false
	}
	g, err1 := strconv.ParseInt(parts[0], 10, 64)
	c, err2 := strconv.ParseInt(parts[1], 10, 64)
	m, err3 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || g == 0 || c == 0 || m == 0 {
		return models.MessageRef{}, "", false
	}
	return models.MessageRef{GuildID: g, ChannelID: c, MessageID: m}, rest, true
}
