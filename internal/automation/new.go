package automation

import (
	pkgLog "case-automation/pkg/log"
)

func New(
	cfg Config,
	classifier Classifier,
	matcher Matcher,
	dispatcher Dispatcher,
	modules []EventModule,
	l pkgLog.Logger,
) UseCase {
	return &usecase{
		cfg:        cfg,
		classifier: classifier,
		matcher:    matcher,
		dispatcher: dispatcher,
		modules:    modules,
		l:          l,
	}
}
