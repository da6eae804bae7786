package domain

type Stats struct {
	Total      int `json:"total"`
	Free       int `json:"free"`
	Pro        int `json:"pro"`
	Enterprise int `json:"enterprise"`
	Admins     int `json:"admins"`
}

func CountStats(profiles []Profile) Stats {
	s := Stats{Total: len(profiles)}
	for _, p := range profiles {
		switch p.Plan {
		case PlanFree:
			s.Free++
		case PlanPro:
			s.Pro++
		case PlanEnterprise:
			s.Enterprise++
		}
		if p.Role.IsAdmin() {
			s.Admins++
		}
	}
	return s
}

// RedirectFor is the landing page after sign-in.
func RedirectFor(p *Profile) string {
	if p != nil && p.Role.IsAdmin() {
		return "/admin"
	}
	return "/dashboard"
}
