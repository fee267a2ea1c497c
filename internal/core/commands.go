package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lanchat/internal/proto"
	"github.com/vovakirdan/lanchat/internal/store"
)

const (
	minUsernameLen = 3
	// maxUsernameLen is what survives the fixed-width username field.
	maxUsernameLen = proto.UsernameSize - 1
	minPasswordLen = 4
)

// commandFunc handles one slash command for an authenticated session.
type commandFunc func(r *Router, ctx context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger)

var commands = map[proto.Command]commandFunc{
	proto.CommandHelp:     (*Router).cmdHelp,
	proto.CommandUsername: (*Router).cmdUsername,
	proto.CommandPassword: (*Router).cmdPassword,
	proto.CommandDelete:   (*Router).cmdDelete,
	proto.CommandShout:    (*Router).cmdShout,
	proto.CommandWhisper:  (*Router).cmdWhisper,
	proto.CommandColor:    (*Router).cmdColor,
	proto.CommandRoll:     (*Router).cmdRoll,
	proto.CommandOnline:   (*Router).cmdOnline,
	proto.CommandJoke:     (*Router).cmdJoke,
}

func (r *Router) handleCommand(ctx context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	logger.Debug().Stringer("command", msg.Command).Str("username", sess.Username()).Msg("command")

	handler, ok := commands[msg.Command]
	if !ok {
		r.reply(sess, ReplyUnknownCommand, logger)
		return
	}
	handler(r, ctx, sess, msg, logger)
}

func (r *Router) cmdHelp(_ context.Context, sess *Session, _ proto.Message, logger *zerolog.Logger) {
	r.reply(sess, HelpText, logger)
}

// cmdUsername expects "new_username current_password" in Content.
func (r *Router) cmdUsername(ctx context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	args := strings.Fields(msg.Content)
	if len(args) != 2 {
		r.reply(sess, ReplyUsernameUsage, logger)
		return
	}
	newName, password := args[0], args[1]
	oldName := sess.Username()

	if len(newName) < minUsernameLen {
		r.reply(sess, ReplyUsernameShort, logger)
		return
	}
	if len(newName) > maxUsernameLen {
		r.reply(sess, ReplyUsernameLong, logger)
		return
	}
	if other := r.registry.FindByUsername(newName); other != nil && other != sess {
		r.reply(sess, ReplyUsernameTaken, logger)
		return
	}
	if err := r.store.Authenticate(ctx, oldName, password); err != nil {
		r.reply(sess, ReplyWrongPassword, logger)
		return
	}

	err := r.store.UpdateUsername(ctx, oldName, password, newName)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrUserExists):
		r.reply(sess, ReplyUsernameExists, logger)
		return
	default:
		if !errors.Is(err, store.ErrRecordNotFound) && !errors.Is(err, store.ErrInvalidCredential) {
			logger.Error().Err(err).Str("username", oldName).Msg("update username")
		}
		r.reply(sess, ReplyUsernameFailed, logger)
		return
	}

	if err := r.registry.Bind(sess, newName); err != nil {
		// The record was renamed but someone logged in under newName
		// in between; that can only be a stale session of a deleted account.
		logger.Warn().Err(err).Str("username", newName).Msg("rename raced with login")
	}
	logger.Info().Str("old", oldName).Str("new", newName).Msg("username changed")

	r.reply(sess, fmt.Sprintf("Username changed from %s to %s", oldName, newName), logger)
	notice := proto.System(fmt.Sprintf("User %s is now known as %s", oldName, newName))
	r.broadcast(notice, nil, logger)
}

// cmdPassword expects "current_password new_password" in Content.
func (r *Router) cmdPassword(ctx context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	args := strings.Fields(msg.Content)
	if len(args) != 2 {
		r.reply(sess, ReplyPasswordUsage, logger)
		return
	}
	current, next := args[0], args[1]
	if len(next) < minPasswordLen {
		r.reply(sess, ReplyPasswordShort, logger)
		return
	}

	if err := r.store.UpdatePassword(ctx, sess.Username(), current, next); err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			logger.Error().Err(err).Str("username", sess.Username()).Msg("update password")
		}
		r.reply(sess, ReplyPasswordFailed, logger)
		return
	}
	logger.Info().Str("username", sess.Username()).Msg("password changed")
	r.reply(sess, ReplyPasswordChanged, logger)
}

// cmdDelete removes the account and drops the session back to the login gate.
// The connection stays open so the user can register or log in again.
func (r *Router) cmdDelete(ctx context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	password := strings.TrimSpace(msg.Content)
	if password == "" {
		r.reply(sess, ReplyDeleteUsage, logger)
		return
	}

	username := sess.Username()
	if err := r.store.Delete(ctx, username, password); err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			logger.Error().Err(err).Str("username", username).Msg("delete account")
		}
		r.reply(sess, ReplyDeleteFailed, logger)
		return
	}

	sess.deauthenticate()
	logger.Info().Str("username", username).Msg("account deleted")
	r.reply(sess, ReplyDeleted, logger)
}

func (r *Router) cmdShout(_ context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	username := sess.Username()
	r.broadcast(proto.Message{
		Type:     proto.TypeChat,
		Username: username,
		Content:  shoutLine(username, msg.Content),
	}, nil, logger)
}

func (r *Router) cmdWhisper(_ context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	target := r.registry.FindByUsername(msg.Target)
	if target == nil {
		r.reply(sess, fmt.Sprintf("User '%s' is not online", msg.Target), logger)
		return
	}

	from := sess.Username()
	r.deliver(target, proto.Message{
		Type:     proto.TypePrivate,
		Username: from,
		Target:   target.Username(),
		Content:  fmt.Sprintf("[PM from %s] %s", from, msg.Content),
	}, logger)
	r.deliver(sess, proto.Message{
		Type:     proto.TypePrivate,
		Username: from,
		Target:   target.Username(),
		Content:  fmt.Sprintf("[PM to %s] %s", target.Username(), msg.Content),
	}, logger)
}

func (r *Router) cmdColor(_ context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	name := truncateColor(strings.TrimSpace(msg.Content))
	if name == "" {
		r.reply(sess, ReplyColorUsage, logger)
		return
	}
	sess.setColor(name)

	r.reply(sess, fmt.Sprintf("Your message color has been set to %s. Supported colors: %s",
		name, supportedColorsDisplay), logger)
	r.reply(sess, colorize(name, ReplyColorSample), logger)
}

func (r *Router) cmdRoll(_ context.Context, sess *Session, _ proto.Message, logger *zerolog.Logger) {
	username := sess.Username()
	r.broadcast(proto.System(rollLine(username, r.intn(100)+1)), nil, logger)
}

func (r *Router) cmdOnline(_ context.Context, sess *Session, _ proto.Message, logger *zerolog.Logger) {
	var names []string
	for _, s := range r.registry.Snapshot() {
		if s.Authenticated() {
			names = append(names, s.Username())
		}
	}
	r.reply(sess, onlineLine(names), logger)
}

func (r *Router) cmdJoke(_ context.Context, sess *Session, _ proto.Message, logger *zerolog.Logger) {
	username := sess.Username()
	joke := jokes[r.intn(len(jokes))]
	r.broadcast(proto.Message{
		Type:     proto.TypeChat,
		Username: username,
		Content:  jokeLine(username, joke),
	}, nil, logger)
}
