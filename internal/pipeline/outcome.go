package pipeline

type OutcomeStatus string

const (
	OutcomeSent    OutcomeStatus = "sent"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// DeliveryOutcome is the result of one recipient's notification. Reason is
// set for skipped and failed deliveries.
type DeliveryOutcome struct {
	Recipient string
	Status    OutcomeStatus
	Reason    string
}

func Sent(recipient string) DeliveryOutcome {
	return DeliveryOutcome{Recipient: recipient, Status: OutcomeSent}
}

func Skipped(recipient, reason string) DeliveryOutcome {
	return DeliveryOutcome{Recipient: recipient, Status: OutcomeSkipped, Reason: reason}
}

func Failed(recipient string, err error) DeliveryOutcome {
	return DeliveryOutcome{Recipient: recipient, Status: OutcomeFailed, Reason: err.Error()}
}

// FanoutResult collects the outcomes of one alert across its matching
// subscribers.
type FanoutResult struct {
	AlertID     string
	Subscribers int
	Matched     int
	Outcomes    []DeliveryOutcome
}

func (r FanoutResult) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
