package explore

// Feedback actions recognized by the reward mapping.
const (
	ActionSwipeRight = "swipe_right"
	ActionAccept     = "accept"
	ActionTeamFormed = "team_formed"
	ActionSwipeLeft  = "swipe_left"
	ActionReject     = "reject"
	ActionSpam       = "spam"
)

// rewardMap translates user actions into reward magnitudes: an accepted
// invite outweighs a right swipe, a formed team outweighs both, and a spam
// report is negative. Left swipes and rejections carry no signal.
var rewardMap = map[string]float64{
	ActionSwipeRight: 1.0,
	ActionAccept:     2.0,
	ActionTeamFormed: 3.0,
	ActionSwipeLeft:  0.0,
	ActionReject:     0.0,
	ActionSpam:       -1.0,
}

// RewardForAction returns the reward magnitude for an action. Unknown
// actions map to 0.0.
func RewardForAction(action string) float64 {
	return rewardMap[action]
}

// KnownAction reports whether the action belongs to the enumerated set.
func KnownAction(action string) bool {
	_, ok := rewardMap[action]
	return ok
}
