package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	New     func() (Result, error)
	Theme   func(ThemeArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	Search  func(SearchArgs) (Result, error)
	Add     func(AddArgs) (Result, error)
	Delete  func(DeleteArgs) (Result, error)
	Tag     func(TagArgs) (Result, error)
	Untag   func(UntagArgs) (Result, error)
	Refresh func() (Result, error)
	Logout  func() (Result, error)
}

func Execute(cmd Command, h Handlers) (Result, error) {
	missing := func() (Result, error) {
		return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", cmd.Type)}
	}
	switch cmd.Type {
	case TypeNew:
		if h.New == nil {
			return missing()
		}
		return h.New()
	case TypeTheme:
		if h.Theme == nil {
			return missing()
		}
		return h.Theme(*cmd.Theme)
	case TypeShow:
		if h.Show == nil {
			return missing()
		}
		return h.Show(*cmd.Show)
	case TypeSearch:
		if h.Search == nil {
			return missing()
		}
		return h.Search(*cmd.Search)
	case TypeAdd:
		if h.Add == nil {
			return missing()
		}
		return h.Add(*cmd.Add)
	case TypeDelete:
		if h.Delete == nil {
			return missing()
		}
		return h.Delete(*cmd.Delete)
	case TypeTag:
		if h.Tag == nil {
			return missing()
		}
		return h.Tag(*cmd.Tag)
	case TypeUntag:
		if h.Untag == nil {
			return missing()
		}
		return h.Untag(*cmd.Untag)
	case TypeRefresh:
		if h.Refresh == nil {
			return missing()
		}
		return h.Refresh()
	case TypeLogout:
		if h.Logout == nil {
			return missing()
		}
		return h.Logout()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
