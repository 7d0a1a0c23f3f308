package user

// User is one registered pool member. The id is opaque and stable; the
// username is the display label shown on leaderboards and may be changed by
// its owner through the account surface, which lives outside this service.
type User struct {
	ID       string
	Username string
}
