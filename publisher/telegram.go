package publisher

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// TelegramPublisher mirrors publications to a Telegram channel. Optional:
// only wired when both the bot token and the channel id are configured.
type TelegramPublisher struct {
	ChannelID string // Telegram channel id (e.g. @my_channel)
	BotAPI    *tgbotapi.BotAPI
}

func NewTelegramPublisher(channelID, token string) (*TelegramPublisher, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramPublisher{
		ChannelID: channelID,
		BotAPI:    b,
	}, nil
}

// Publish sends a text message to the channel and returns the message id.
func (t *TelegramPublisher) Publish(msg string) (pubID string, err error) {
	tgMsg := tgbotapi.NewMessageToChannel(t.ChannelID, msg)

	s, err := t.BotAPI.Send(tgMsg)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(s.MessageID), nil
}

// PublishImage sends an in-memory image with a caption to the channel.
func (t *TelegramPublisher) PublishImage(filename string, image []byte, caption string) (pubID string, err error) {
	photo := tgbotapi.PhotoConfig{
		BaseFile: tgbotapi.BaseFile{
			BaseChat: tgbotapi.BaseChat{ChannelUsername: t.ChannelID},
			File:     tgbotapi.FileBytes{Name: filename, Bytes: image},
		},
		Caption: caption,
	}

	s, err := t.BotAPI.Send(photo)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(s.MessageID), nil
}
