package core

import "errors"

var (
	// ErrCapacityExceeded is returned when every registry slot is taken.
	ErrCapacityExceeded = errors.New("registry capacity exceeded")
	// ErrUsernameOnline is returned when another authenticated session holds the name.
	ErrUsernameOnline = errors.New("username already online")
	// ErrQueueFull is returned when a session's outbound queue cannot take another record.
	ErrQueueFull = errors.New("send queue full")
	// ErrSessionClosed is returned when sending to a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// Replies sent to clients as System records.
const (
	ReplyServerFull        = "Server is full. Please try again later."
	ReplyLoginFirst        = "Please login first"
	ReplyLoginSuccessful   = "Login successful"
	ReplyLoginFailed       = "Login failed"
	ReplyLoginOnline       = "Login failed: user is already online"
	ReplyRegisterSuccess   = "Registration successful"
	ReplyRegisterExists    = "Username already exists"
	ReplyRegisterFailed    = "Registration failed"
	ReplyUnknownCommand    = "Unknown command. Type /help for a list of commands."
	ReplyUsernameUsage     = "Usage: /username <new_username> <current_password>"
	ReplyUsernameShort     = "Username must be at least 3 characters"
	ReplyUsernameLong      = "Username must be at most 31 characters"
	ReplyUsernameTaken     = "Username already taken"
	ReplyWrongPassword     = "Current password is incorrect"
	ReplyUsernameExists    = "Username already exists"
	ReplyUsernameFailed    = "Failed to change username"
	ReplyPasswordUsage     = "Usage: /password <current_password> <new_password>"
	ReplyPasswordShort     = "New password must be at least 4 characters"
	ReplyPasswordChanged   = "Password changed successfully"
	ReplyPasswordFailed    = "Failed to change password. Check your current password."
	ReplyDeleteUsage       = "Usage: /delete <password>"
	ReplyDeleted           = "Your account has been deleted. You are now logged out."
	ReplyDeleteFailed      = "Failed to delete account. Check your password."
	ReplyColorUsage        = "Usage: /color <colorname>"
	ReplyColorSample       = "This is a sample message in your chosen color."
	ReplyNoUsersOnline     = "No users online"
	supportedColorsDisplay = "red, green, blue, yellow, magenta, cyan, white"
)

// HelpText is the static /help listing.
const HelpText = "Available commands:\n" +
	"/help - Show this help message\n" +
	"/username <new_username> <current_password> - Change your username\n" +
	"/password <current_password> <new_password> - Change your password\n" +
	"/delete <password> - Delete your account\n" +
	"/shout <message> - Send a message in UPPERCASE\n" +
	"/whisper <username> <message> - Send a private message\n" +
	"/w <username> <message> - Shorthand for whisper\n" +
	"/color <color> - Change your message color\n" +
	"/roll - Roll a random number\n" +
	"/online - Show all online users\n" +
	"/clear - Clear the chat window\n" +
	"/joke - Tell a random joke"
