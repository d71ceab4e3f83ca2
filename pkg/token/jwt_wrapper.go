package token

import "chat_sync_service/pkg/config"

// Overridable in tests to avoid real signing.
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)

// GenerateJWTWrapper lets usecase tests swap the generator
func GenerateJWTWrapper(memberID, role string) (string, error) {
	return GenerateJWTFunc(memberID, role, config.EnvConfig.MemberService)
}

// ParseJWTWrapper lets usecase tests swap the parser
func ParseJWTWrapper(t string) (*Claims, error) {
	return ParseJWTFunc(t)
}
