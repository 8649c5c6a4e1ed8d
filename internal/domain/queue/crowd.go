package queue

// Crowd levels.
const (
	CrowdLow    = "LOW"
	CrowdMedium = "MEDIUM"
	CrowdHigh   = "HIGH"
)

// Crowd thresholds on the number of booked tokens for the day.
const (
	crowdMediumAt = 5
	crowdHighAt   = 10
)

// CrowdLevel is the crowd payload broadcast to hospital rooms. The class
// fields are Tailwind utility strings consumed verbatim by the web client.
type CrowdLevel struct {
	Level      string `json:"level"`
	WaitTime   string `json:"waitTime"`
	BadgeClass string `json:"badgeClass"`
	BarClass   string `json:"barClass"`
}

// ClassifyCrowd buckets a day's booked-token count into a crowd level.
func ClassifyCrowd(bookedTokens int) CrowdLevel {
	switch {
	case bookedTokens >= crowdHighAt:
		return CrowdLevel{
			Level:      CrowdHigh,
			WaitTime:   "45+ mins",
			BadgeClass: "bg-rose-100 text-rose-700",
			BarClass:   "bg-rose-500",
		}
	case bookedTokens >= crowdMediumAt:
		return CrowdLevel{
			Level:      CrowdMedium,
			WaitTime:   "15–30 mins",
			BadgeClass: "bg-amber-100 text-amber-700",
			BarClass:   "bg-amber-500",
		}
	default:
		return CrowdLevel{
			Level:      CrowdLow,
			WaitTime:   "5–10 mins",
			BadgeClass: "bg-emerald-100 text-emerald-700",
			BarClass:   "bg-emerald-500",
		}
	}
}
