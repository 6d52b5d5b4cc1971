package auth

// TopicStatus carries operation progress for presentation layers: forms show
// a spinner on pending and a toast on success/error.
const TopicStatus = "auth:status"

// Operation names reported on the status topic.
const (
	OperationRegister       = "register"
	OperationLogin          = "login"
	OperationLogout         = "logout"
	OperationRefresh        = "refresh"
	OperationForgotPassword = "forgot-password"
	OperationResetPassword  = "reset-password"
)

// Phase of an operation's lifecycle.
type Phase string

const (
	PhasePending Phase = "pending"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// Status is the payload published on TopicStatus.
type Status struct {
	Operation string
	Phase     Phase
	Message   string
	Err       error
}

func (s *Service) reportPending(operation string) {
	s.publish(TopicStatus, Status{Operation: operation, Phase: PhasePending})
}

func (s *Service) reportSuccess(operation, message string) {
	s.publish(TopicStatus, Status{Operation: operation, Phase: PhaseSuccess, Message: message})
}

func (s *Service) reportError(operation string, err error) {
	s.publish(TopicStatus, Status{Operation: operation, Phase: PhaseError, Message: err.Error(), Err: err})
}
