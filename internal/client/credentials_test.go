package client

import "context"

// staticCredentials answers every request with fixed values and records the order of requests.
type staticCredentials struct {
	phone    string
	password string
	code     string
	asked    []string
}

func (s *staticCredentials) Phone(context.Context) (string, error) {
	s.asked = append(s.asked, "phone")
	return s.phone, nil
}

func (s *staticCredentials) Password(context.Context) (string, error) {
	s.asked = append(s.asked, "password")
	return s.password, nil
}

func (s *staticCredentials) Code(context.Context) (string, error) {
	s.asked = append(s.asked, "code")
	return s.code, nil
}
