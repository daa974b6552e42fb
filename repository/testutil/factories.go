package testutil

import (
	"fmt"

	"parley/models"
)

// CreateTestSpendingRecord creates a spending record with default values
func CreateTestSpendingRecord(userID int64) *models.SpendingRecord {
	return &models.SpendingRecord{
		UserID:       userID,
		Cost:         250_000,
		InputTokens:  120,
		OutputTokens: 380,
		Model:        "gpt-4o-mini",
	}
}

// CreateTestSpendingRecordWithCost creates a spending record with a specific cost
func CreateTestSpendingRecordWithCost(userID, cost int64) *models.SpendingRecord {
	record := CreateTestSpendingRecord(userID)
	record.Cost = cost
	return record
}

// CreateTestRef creates a message reference in a fixed guild and channel
func CreateTestRef(messageID int64) models.MessageRef {
	return models.MessageRef{GuildID: 1000, ChannelID: 2000, MessageID: messageID}
}

// CreateTestRootNode creates a parentless conversation node
func CreateTestRootNode(messageID int64) *models.ConversationNode {
	return &models.ConversationNode{
		Message: CreateTestRef(messageID),
		Input:   fmt.Sprintf("prompt %d", messageID),
		Output:  fmt.Sprintf("response %d", messageID),
	}
}

// CreateTestChildNode creates a conversation node continuing parentID
func CreateTestChildNode(messageID, parentID int64) *models.ConversationNode {
	node := CreateTestRootNode(messageID)
	parent := CreateTestRef(parentID)
	node.Parent = &parent
	return node
}
