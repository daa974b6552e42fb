package bot

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"parley/bot/common"
	"parley/models"
)

// handleMessage processes inbound guild messages: anything the resolver
// accepts is run through the query pipeline, everything else is ignored
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	ctx := context.Background()

	req, ok := b.resolver.Resolve(ctx, m)
	if !ok {
		return
	}

	reply := func(content string) (models.MessageRef, error) {
		sent, err := b.sendReply(s, m, content)
		if err != nil {
			return models.MessageRef{}, err
		}
		return sentRef(m.GuildID, m.ChannelID, sent.ID)
	}

	if err := b.queryService.Execute(ctx, *req, reply); err != nil {
		log.WithError(err).WithField("messageID", m.ID).Error("Query failed")
	}
}

// sentRef converts a delivered reply into the reference its conversation
// node will be keyed by. The key must be real: an unparseable ID cannot be
// stored as message 0.
func sentRef(guildID, channelID, messageID string) (models.MessageRef, error) {
	ref, ok := parseRef(guildID, channelID, messageID)
	if !ok {
		return models.MessageRef{}, fmt.Errorf("unparseable ID %q on sent reply", messageID)
	}
	return ref, nil
}

// sendReply delivers the answer as a reply to the triggering message, moving
// to an embed when the content exceeds the plain message limit
func (b *Bot) sendReply(s *discordgo.Session, m *discordgo.MessageCreate, content string) (*discordgo.Message, error) {
	reference := &discordgo.MessageReference{
		MessageID: m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	}

	if utf8.RuneCountInString(content) <= common.MaxMessageLength {
		return s.ChannelMessageSendReply(m.ChannelID, content, reference)
	}

	return s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{Description: common.Truncate(content, common.MaxEmbedLength)},
		},
		Reference: reference,
	})
}
