package main

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/config"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/telegram"
)

func main() {
	cfg := config.Load()

	bot, err := tgbotapi.NewBotAPI(config.MustTelegramToken())
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false

	api := telegram.NewClient(cfg.CVServerURL, cfg.LLMServerURL)
	router := telegram.NewRouter(bot, api)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	log.Printf("bot authorized as @%s", bot.Self.UserName)
	for upd := range updates {
		router.HandleUpdate(upd)
	}
}
