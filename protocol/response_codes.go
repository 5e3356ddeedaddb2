package protocol

// ResponseCode is the closed set of outcomes a ProtocolResponse can carry.
// Encoded on the wire as lowercase tokens.
type ResponseCode int

const (
	RespOk ResponseCode = iota
	RespInvalid
	RespNameNotFound
	RespLogin
	RespContextError
	RespWrong
	RespSpectatorsNotAllowed
	RespOnlyBuddies
	RespUserLevelTooLow
)

var responseCodeNames = map[ResponseCode]string{
	RespOk:                   "ok",
	RespInvalid:              "invalid",
	RespNameNotFound:         "name_not_found",
	RespLogin:                "login",
	RespContextError:         "context_error",
	RespWrong:                "wrong",
	RespSpectatorsNotAllowed: "spectators_not_allowed",
	RespOnlyBuddies:          "only_buddies",
	RespUserLevelTooLow:      "user_level_too_low",
}

var responseCodeByName = func() map[string]ResponseCode {
	m := make(map[string]ResponseCode, len(responseCodeNames))
	for code, name := range responseCodeNames {
		m[name] = code
	}
	return m
}()

func (c ResponseCode) String() string {
	if name, ok := responseCodeNames[c]; ok {
		return name
	}
	return "invalid"
}

func parseResponseCode(name string) ResponseCode {
	if code, ok := responseCodeByName[name]; ok {
		return code
	}
	return RespOk
}
