package bookings

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	MethodUPI        PaymentMethod = "UPI"
	MethodCard       PaymentMethod = "CARD"
	MethodNetBanking PaymentMethod = "NETBANKING"
	MethodWallet     PaymentMethod = "WALLET"
)

// IsValid checks if the payment method is one we accept.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodUPI, MethodCard, MethodNetBanking, MethodWallet:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// Outcome is the settlement result reported for a payment attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

func (o Outcome) IsValid() bool {
	return o == OutcomeSuccess || o == OutcomeFailure
}
