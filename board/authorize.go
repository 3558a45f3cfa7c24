package board

// Authorize decides whether caller may mutate post. It only adjudicates
// between two authenticated identities, resolving the caller is the job
// of the session gate.
func Authorize(caller int64, post Post) error {
	if post.Writer != caller {
		return NotOwner{Post: post.ID, Caller: caller}
	}
	return nil
}
