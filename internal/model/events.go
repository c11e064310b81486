package model

import "time"

// EventType names a wire event. Each WebSocket message is an envelope
// {event, data} carrying one of these.
type EventType string

// Inbound events (client -> server)
const (
	EventAuthenticate       EventType = "authenticate"
	EventSendChallenge      EventType = "sendChallenge"
	EventRespondToChallenge EventType = "respondToChallenge"
	EventFindMatch          EventType = "findMatch"
	EventCancelMatchmaking  EventType = "cancelMatchmaking"
	EventMatchSymbolChosen  EventType = "matchSymbolChosen"
	EventMakeMove           EventType = "makeMove"
	EventSendMessage        EventType = "sendMessage"
	EventRequestRematch     EventType = "requestRematch"
	EventRespondToRematch   EventType = "respondToRematch"
	EventLeaveGame          EventType = "leaveGame"
	EventUpdateAvatar       EventType = "updateAvatar"
)

// Outbound events (server -> client)
const (
	EventAuthenticated     EventType = "authenticated"
	EventAuthError         EventType = "authError"
	EventOnlineUsers       EventType = "onlineUsers"
	EventChallengeReceived EventType = "challengeReceived"
	EventChallengeDeclined EventType = "challengeDeclined"
	EventMatchFound        EventType = "matchFound"
	EventSymbolTaken       EventType = "symbolTaken"
	EventSymbolAccepted    EventType = "symbolAccepted"
	EventGameStart         EventType = "gameStart"
	EventGameUpdate        EventType = "gameUpdate"
	EventMessageReceived   EventType = "messageReceived"
	EventRematchRequested  EventType = "rematchRequested"
	EventRematchDeclined   EventType = "rematchDeclined"
	EventAvatarUpdated     EventType = "avatarUpdated"
	EventError             EventType = "error"
)

// Inbound payloads

type AuthenticatePayload struct {
	Token string `json:"token"`
}

type SendChallengePayload struct {
	Target Username `json:"target"`
	Symbol Symbol   `json:"symbol"`
}

type ChallengeResponsePayload struct {
	ChallengeID ChallengeID `json:"id"`
	Accepted    bool        `json:"accepted"`
	Symbol      Symbol      `json:"symbol"`
}

type SymbolChoicePayload struct {
	MatchID MatchID `json:"matchId"`
	Symbol  Symbol  `json:"symbol"`
}

type MovePayload struct {
	SessionID SessionID `json:"sessionId"`
	Position  int       `json:"position"`
}

type ChatPayload struct {
	SessionID SessionID `json:"sessionId"`
	Text      string    `json:"text"`
}

type RematchPayload struct {
	SessionID SessionID `json:"sessionId"`
}

type RematchResponsePayload struct {
	SessionID SessionID `json:"sessionId"`
	Accepted  bool      `json:"accepted"`
}

type LeavePayload struct {
	SessionID SessionID `json:"sessionId"`
}

type AvatarPayload struct {
	Avatar string `json:"avatar"`
}

// Outbound payloads

type AuthErrorPayload struct {
	Reason string `json:"reason"`
}

type OnlineUsersPayload struct {
	Users []PublicUser `json:"users"`
}

type ChallengeReceivedPayload struct {
	ChallengeID ChallengeID `json:"id"`
	From        Username    `json:"from"`
	Symbol      Symbol      `json:"symbol"`
}

type ChallengeDeclinedPayload struct {
	By Username `json:"by"`
}

type MatchFoundPayload struct {
	MatchID  MatchID  `json:"matchId"`
	Opponent Username `json:"opponent"`
}

type SymbolTakenPayload struct {
	MatchID MatchID `json:"matchId"`
	Symbol  Symbol  `json:"symbol"`
}

type SymbolAcceptedPayload struct {
	MatchID MatchID `json:"matchId"`
	Symbol  Symbol  `json:"symbol"`
}

// GameStartPayload is the full session snapshot both participants
// receive when a game begins or restarts
type GameStartPayload struct {
	SessionID     SessionID           `json:"sessionId"`
	Players       map[Username]Symbol `json:"players"`
	CurrentPlayer Username            `json:"currentPlayer"`
	Board         Board               `json:"board"`
}

type GameUpdatePayload struct {
	SessionID     SessionID    `json:"sessionId"`
	Board         Board        `json:"board"`
	CurrentPlayer Username     `json:"currentPlayer"`
	State         SessionState `json:"state"`
	Winner        Username     `json:"winner,omitempty"`
	IsDraw        bool         `json:"isDraw"`
}

type MessageReceivedPayload struct {
	SessionID SessionID `json:"sessionId"`
	From      Username  `json:"from"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sentAt"`
}

type RematchRequestedPayload struct {
	SessionID SessionID `json:"sessionId"`
	From      Username  `json:"from"`
}

type RematchDeclinedPayload struct {
	SessionID SessionID `json:"sessionId"`
	From      Username  `json:"from"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
