package service

import "strings"

// authMessages maps raw auth failures to messages fit for the sign-in form.
// A rule matches when every fragment appears in the lowercased error. First match wins.
var authMessages = []struct {
	all []string
	msg string
}{
	{[]string{"password", "required"}, "Password is required"},
	{[]string{"email", "required"}, "Email is required"},
	{[]string{"'email' tag"}, "Please enter a valid email address"},
	{[]string{"invalid", "email"}, "Please enter a valid email address"},
	{[]string{"password", "min"}, "Password must be at least 6 characters long"},
	{[]string{"password", "too short"}, "Password must be at least 6 characters long"},
	{[]string{"password", "'max' tag"}, "Password must be at most 72 bytes long"},
	{[]string{"invalid login credentials"}, "Invalid email or password. Please check your credentials and try again."},
	{[]string{"email not confirmed"}, "Please check your email and click the confirmation link before signing in."},
	{[]string{"too many requests"}, "Too many attempts. Please wait a moment before trying again."},
	{[]string{"rate limit"}, "Too many attempts. Please wait a moment before trying again."},
	{[]string{"already registered"}, "An account with this email already exists. Please sign in instead."},
	{[]string{"already exists"}, "An account with this email already exists. Please sign in instead."},
	{[]string{"duplicate key"}, "An account with this email already exists. Please sign in instead."},
}

// FriendlyAuthMessage returns the first matching message, or fallback.
func FriendlyAuthMessage(raw, fallback string) string {
	lower := strings.ToLower(raw)
	for _, r := range authMessages {
		ok := true
		for _, frag := range r.all {
			if !strings.Contains(lower, frag) {
				ok = false
				break
			}
		}
		if ok {
			return r.msg
		}
	}
	return fallback
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
