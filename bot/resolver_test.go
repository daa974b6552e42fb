package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parley/models"
	"parley/service"
)

const botUserID = "999"

type fakeFetcher struct {
	messages map[string]*discordgo.Message // channelID/messageID
	perms    map[string]int64              // userID/channelID
}

func (f *fakeFetcher) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if msg, ok := f.messages[channelID+"/"+messageID]; ok {
		return msg, nil
	}
	return nil, errors.New("unknown message")
}

func (f *fakeFetcher) UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error) {
	return f.perms[userID+"/"+channelID], nil
}

func inbound(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "400",
		ChannelID: "2",
		GuildID:   "1",
		Content:   content,
		Author:    &discordgo.User{ID: "100"},
	}}
}

func newTestResolver(conversations *service.MockConversationService, fetcher *fakeFetcher) *Resolver {
	if fetcher == nil {
		fetcher = &fakeFetcher{}
	}
	return NewResolver(fetcher, conversations, botUserID)
}

func TestResolver_MentionAtStart(t *testing.T) {
	r := newTestResolver(new(service.MockConversationService), nil)

	req, ok := r.Resolve(context.Background(), inbound("<@999> hello"))

	require.True(t, ok)
	assert.Equal(t, "hello", req.Prompt)
	assert.Nil(t, req.Parent)
	assert.Equal(t, int64(100), req.UserID)
	assert.Equal(t, models.MessageRef{GuildID: 1, ChannelID: 2, MessageID: 400}, req.Message)
}

func TestResolver_MentionAtEnd(t *testing.T) {
	r := newTestResolver(new(service.MockConversationService), nil)

	req, ok := r.Resolve(context.Background(), inbound("hello there <@!999>"))

	require.True(t, ok)
	assert.Equal(t, "hello there", req.Prompt)
}

func TestResolver_BareMentionDropped(t *testing.T) {
	r := newTestResolver(new(service.MockConversationService), nil)

	_, ok := r.Resolve(context.Background(), inbound("<@999>"))

	assert.False(t, ok)
}

func TestResolver_MidMessageMentionIgnored(t *testing.T) {
	r := newTestResolver(new(service.MockConversationService), nil)

	_, ok := r.Resolve(context.Background(), inbound("hey <@999> hello"))

	assert.False(t, ok)
}

func TestResolver_NoMentionIgnored(t *testing.T) {
	r := newTestResolver(new(service.MockConversationService), nil)

	_, ok := r.Resolve(context.Background(), inbound("just chatting"))

	assert.False(t, ok)
}

func TestResolver_ReplyToStoredBotMessage(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(true, nil)

	r := newTestResolver(conversations, nil)

	m := inbound("continue please")
	m.MessageReference = &discordgo.MessageReference{ChannelID: "2", MessageID: "300"}
	m.ReferencedMessage = &discordgo.Message{
		ID:      "300",
		Author:  &discordgo.User{ID: botUserID},
		Content: "earlier answer",
	}

	req, ok := r.Resolve(context.Background(), m)

	require.True(t, ok)
	require.NotNil(t, req.Parent)
	assert.Equal(t, int64(300), req.Parent.MessageID)
	assert.Equal(t, "continue please", req.Prompt)
}

func TestResolver_ReplyToUnrecordedBotMessageDropped(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(false, nil)

	r := newTestResolver(conversations, nil)

	m := inbound("continue please")
	m.MessageReference = &discordgo.MessageReference{ChannelID: "2", MessageID: "300"}
	m.ReferencedMessage = &discordgo.Message{
		ID:     "300",
		Author: &discordgo.User{ID: botUserID},
	}

	_, ok := r.Resolve(context.Background(), m)

	assert.False(t, ok)
}

func TestResolver_ReplyToThirdPartyQuotes(t *testing.T) {
	r := newTestResolver(new(service.MockConversationService), nil)

	m := inbound("<@999> why")
	m.MessageReference = &discordgo.MessageReference{ChannelID: "2", MessageID: "300"}
	m.ReferencedMessage = &discordgo.Message{
		ID:      "300",
		Author:  &discordgo.User{ID: "200"},
		Content: "42",
	}

	req, ok := r.Resolve(context.Background(), m)

	require.True(t, ok)
	assert.Equal(t, `why "42"`, req.Prompt)
	assert.Nil(t, req.Parent)
}

func TestResolver_ReplyToThirdPartyWithoutMentionIgnored(t *testing.T) {
	r := newTestResolver(new(service.MockConversationService), nil)

	m := inbound("interesting point")
	m.MessageReference = &discordgo.MessageReference{ChannelID: "2", MessageID: "300"}
	m.ReferencedMessage = &discordgo.Message{
		ID:      "300",
		Author:  &discordgo.User{ID: "200"},
		Content: "42",
	}

	_, ok := r.Resolve(context.Background(), m)

	assert.False(t, ok)
}

func TestResolver_ReplyMentionOnlyUsesQuotedText(t *testing.T) {
	r := newTestResolver(new(service.MockConversationService), nil)

	m := inbound("<@999>")
	m.MessageReference = &discordgo.MessageReference{ChannelID: "2", MessageID: "300"}
	m.ReferencedMessage = &discordgo.Message{
		ID:      "300",
		Author:  &discordgo.User{ID: "200"},
		Content: "<@999> what is six times seven",
	}

	req, ok := r.Resolve(context.Background(), m)

	require.True(t, ok)
	// The quoted text stands alone, with the forwarded mention stripped.
	assert.Equal(t, "what is six times seven", req.Prompt)
}

func TestResolver_LinkToStoredBotMessage(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(true, nil)

	r := newTestResolver(conversations, nil)

	req, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/1/2/300 and then?"))

	require.True(t, ok)
	require.NotNil(t, req.Parent)
	assert.Equal(t, models.MessageRef{GuildID: 1, ChannelID: 2, MessageID: 300}, *req.Parent)
	assert.Equal(t, "and then?", req.Prompt)
}

func TestResolver_LinkCrossGuildDropped(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(true, nil)

	r := newTestResolver(conversations, nil)

	_, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/7/2/300 and then?"))

	assert.False(t, ok)
}

func TestResolver_LinkCrossChannelNeedsReadAccess(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(true, nil)

	fetcher := &fakeFetcher{perms: map[string]int64{}}
	r := newTestResolver(conversations, fetcher)

	_, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/1/5/300 and then?"))
	assert.False(t, ok)

	fetcher.perms["100/5"] = discordgo.PermissionViewChannel
	req, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/1/5/300 and then?"))
	require.True(t, ok)
	assert.Equal(t, int64(5), req.Parent.ChannelID)
}

func TestResolver_ForeignLinkCrossChannelNeedsReadAccess(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(false, nil)

	fetcher := &fakeFetcher{
		messages: map[string]*discordgo.Message{
			"7/300": {ID: "300", Author: &discordgo.User{ID: "200"}, Content: "secret plans"},
		},
		perms: map[string]int64{},
	}
	r := newTestResolver(conversations, fetcher)

	// Linked content must never leak out of a channel the asker cannot read.
	_, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/1/7/300 thoughts?"))
	assert.False(t, ok)

	fetcher.perms["100/7"] = discordgo.PermissionViewChannel
	req, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/1/7/300 thoughts?"))
	require.True(t, ok)
	assert.Equal(t, `thoughts? "secret plans"`, req.Prompt)
}

func TestResolver_ForeignLinkCrossGuildDropped(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(false, nil)

	fetcher := &fakeFetcher{messages: map[string]*discordgo.Message{
		"2/300": {ID: "300", Author: &discordgo.User{ID: "200"}, Content: "42"},
	}}
	r := newTestResolver(conversations, fetcher)

	_, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/9/2/300 why"))

	assert.False(t, ok)
}

func TestResolver_LinkToForeignMessageQuotes(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(false, nil)

	fetcher := &fakeFetcher{messages: map[string]*discordgo.Message{
		"2/300": {ID: "300", Author: &discordgo.User{ID: "200"}, Content: "42"},
	}}
	r := newTestResolver(conversations, fetcher)

	req, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/1/2/300 why"))

	require.True(t, ok)
	assert.Nil(t, req.Parent)
	assert.Equal(t, `why "42"`, req.Prompt)
}

func TestResolver_UnreachableLinkFallsBackToFullText(t *testing.T) {
	conversations := new(service.MockConversationService)
	conversations.On("IsOwnReply", mock.Anything, int64(300)).Return(false, nil)

	r := newTestResolver(conversations, &fakeFetcher{})

	req, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/1/2/300 why"))

	require.True(t, ok)
	assert.Nil(t, req.Parent)
	assert.Equal(t, "https://discord.com/channels/1/2/300 why", req.Prompt)
}

func TestResolver_BareLinkIsPlainPrompt(t *testing.T) {
	// A link with nothing after it is just text the user wants discussed.
	r := newTestResolver(new(service.MockConversationService), nil)

	req, ok := r.Resolve(context.Background(), inbound("<@999> https://discord.com/channels/1/2/300"))

	require.True(t, ok)
	assert.Nil(t, req.Parent)
	assert.Equal(t, "https://discord.com/channels/1/2/300", req.Prompt)
}

func TestParseMessageLink(t *testing.T) {
	ref, rest, ok := parseMessageLink("https://discord.com/channels/1/2/3 tail text")
	require.True(t, ok)
	assert.Equal(t, models.MessageRef{GuildID: 1, ChannelID: 2, MessageID: 3}, ref)
	assert.Equal(t, "tail text", rest)

	ref, rest, ok = parseMessageLink("https://canary.discord.com/channels/1/2/3 x")
	require.True(t, ok)
	assert.Equal(t, int64(3), ref.MessageID)
	assert.Equal(t, "x", rest)

	// Only a space terminates a link; end-of-string does not.
	_, _, ok = parseMessageLink("https://discord.com/channels/1/2/3")
	assert.False(t, ok)

	_, _, ok = parseMessageLink("https://discord.com/channels/1/2")
	assert.False(t, ok)

	_, _, ok = parseMessageLink("https://discord.com/channels/0/2/3 x")
	assert.False(t, ok)

	_, _, ok = parseMessageLink("see https://discord.com/channels/1/2/3")
	assert.False(t, ok)

	_, _, ok = parseMessageLink("https://example.com/channels/1/2/3")
	assert.False(t, ok)
}
