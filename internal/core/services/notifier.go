package services

import (
	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
)

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notification) {}

func orNop(n driven.Notifier) driven.Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
