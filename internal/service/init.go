package service

import (
	"clipcap/config"
	"clipcap/internal/taskrunner"
	"clipcap/internal/types"
	"clipcap/pkg/whisper"
)

type Service struct {
	Transcriber types.Transcriber
	Prober      types.VideoProber
	Runner      types.CommandRunner
	Hub         *Hub

	// Dispatcher, when set, receives new tasks instead of the in-process
	// runner. The asynq queue plugs in here when Redis is configured.
	Dispatcher types.TaskDispatcher

	tasks *taskrunner.Runner
}

func NewService() *Service {
	s := &Service{
		Transcriber: whisper.NewClient(
			config.Conf.Transcribe.Openai.BaseUrl,
			config.Conf.Transcribe.Openai.ApiKey,
			config.Conf.App.Proxy,
		),
		Prober: NewFfprobeProber(),
		Runner: execRunner{},
		Hub:    NewHub(),
	}
	s.tasks = taskrunner.New(s.runCaptionTask, taskrunner.DefaultConfig())
	return s
}
