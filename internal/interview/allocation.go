package interview

// TotalQuestions is the fixed number of questions per session: one warmup
// plus nine technical questions.
const TotalQuestions = 10

// maxRoles caps how many detected roles a session uses. Extra roles are
// dropped, not rejected.
const maxRoles = 2

// allocateQuota splits TotalQuestions across the roles in registration
// order. With two roles the first gets the floor share, so after the warmup
// (attributed to the first role) the first role draws the smaller technical
// share.
func allocateQuota(roleNames []string) map[string]int {
	quota := make(map[string]int, len(roleNames))

	if len(roleNames) == 1 {
		quota[roleNames[0]] = TotalQuestions
		return quota
	}

	first := TotalQuestions / 2
	quota[roleNames[0]] = first
	quota[roleNames[1]] = TotalQuestions - first
	return quota
}
