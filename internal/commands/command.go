package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeNew     Type = "new"
	TypeTheme   Type = "theme"
	TypeShow    Type = "show"
	TypeSearch  Type = "search"
	TypeAdd     Type = "add"
	TypeDelete  Type = "delete"
	TypeTag     Type = "tag"
	TypeUntag   Type = "untag"
	TypeRefresh Type = "refresh"
	TypeLogout  Type = "logout"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

var (
	ThemeModes = []string{"light", "dark", "system", "toggle"}
	Pages      = []string{"dashboard", "todos", "schedule", "agent", "settings"}
	importance = []string{"none", "low", "medium", "high"}
)

type ThemeArgs struct {
	Mode string
}

type ShowArgs struct {
	Page string
}

type SearchArgs struct {
	Text string
}

// AddArgs carries datetime-local strings; the handler validates them.
type AddArgs struct {
	Item       string
	Start      string
	End        string
	Importance string
}

type DeleteArgs struct {
	TodoID string
}

type TagArgs struct {
	Name  string
	Color string
}

type UntagArgs struct {
	TagID string
}

type Command struct {
	Type   Type
	Raw    string
	Theme  *ThemeArgs
	Show   *ShowArgs
	Search *SearchArgs
	Add    *AddArgs
	Delete *DeleteArgs
	Tag    *TagArgs
	Untag  *UntagArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	head, rest, _ := strings.Cut(raw, " ")
	head = strings.ToLower(head)
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	cmd := Command{Type: Type(head), Raw: input}
	switch cmd.Type {
	case TypeNew, TypeRefresh, TypeLogout:
		if len(args) > 0 {
			return Command{}, invalid("%s takes no arguments", head)
		}
	case TypeTheme:
		if len(args) != 1 || !oneOf(strings.ToLower(args[0]), ThemeModes) {
			return Command{}, invalid("theme requires one of %s", strings.Join(ThemeModes, ", "))
		}
		cmd.Theme = &ThemeArgs{Mode: strings.ToLower(args[0])}
	case TypeShow:
		if len(args) != 1 || !oneOf(strings.ToLower(args[0]), Pages) {
			return Command{}, invalid("show requires one of %s", strings.Join(Pages, ", "))
		}
		cmd.Show = &ShowArgs{Page: strings.ToLower(args[0])}
	case TypeSearch:
		// An empty search clears the filter.
		cmd.Search = &SearchArgs{Text: rest}
	case TypeAdd:
		add, err := parseAdd(rest)
		if err != nil {
			return Command{}, err
		}
		cmd.Add = add
	case TypeDelete:
		if len(args) != 1 {
			return Command{}, invalid("delete requires a todo id")
		}
		cmd.Delete = &DeleteArgs{TodoID: args[0]}
	case TypeTag:
		if len(args) == 0 || len(args) > 2 {
			return Command{}, invalid("tag requires a name and an optional color")
		}
		tag := &TagArgs{Name: args[0]}
		if len(args) == 2 {
			tag.Color = args[1]
		}
		cmd.Tag = tag
	case TypeUntag:
		if len(args) != 1 {
			return Command{}, invalid("untag requires a tag id")
		}
		cmd.Untag = &UntagArgs{TagID: args[0]}
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
	return cmd, nil
}

// parseAdd reads "item | start | end [| importance]".
func parseAdd(rest string) (*AddArgs, error) {
	parts := strings.Split(rest, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 || len(parts) > 4 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, invalid("add requires: item | start | end [| importance]")
	}
	add := &AddArgs{Item: parts[0], Start: parts[1], End: parts[2]}
	if len(parts) == 4 && parts[3] != "" {
		level := strings.ToLower(parts[3])
		if !oneOf(level, importance) {
			return nil, invalid("importance must be one of %s", strings.Join(importance, ", "))
		}
		add.Importance = level
	}
	return add, nil
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
