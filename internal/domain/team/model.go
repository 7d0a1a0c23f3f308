package team

// Team is one side of a matchup.
type Team struct {
	ID        string
	Name      string
	ShortName string
	LogoURL   string
	Color     string
}
