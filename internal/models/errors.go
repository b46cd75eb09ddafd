package models

import "errors"

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrAlreadyVoted    = errors.New("already voted on this article")
	ErrInvalidArticle  = errors.New("invalid article")
	ErrInvalidVote     = errors.New("invalid vote")
)
