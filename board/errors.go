package board

import "fmt"

type (
	HandleTaken struct {
		Handle string
	}

	InvalidHandle struct {
		Handle string
	}

	UserNotFound struct {
		Handle string
	}

	PostNotFound struct {
		ID int64
	}

	NotOwner struct {
		Post   int64
		Caller int64
	}

	InvalidPost struct {
		Field  string
		Reason string
	}
)

func (h HandleTaken) Error() string {
	return fmt.Sprintf("handle %v is already taken", h.Handle)
}

func (i InvalidHandle) Error() string {
	return fmt.Sprintf("handles must have at least %v characters", MinHandleLen)
}

func (u UserNotFound) Error() string {
	return fmt.Sprintf("user %v not found", u.Handle)
}

func (p PostNotFound) Error() string {
	return fmt.Sprintf("post %v not found", p.ID)
}

func (n NotOwner) Error() string {
	return fmt.Sprintf("post %v is not owned by user %v", n.Post, n.Caller)
}

func (i InvalidPost) Error() string {
	return fmt.Sprintf("invalid %v: %v", i.Field, i.Reason)
}
