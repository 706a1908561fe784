package web

import "time"

// View is a page record handed to a Renderer.
type View interface {
	ViewName() string
}

type LoginPage struct {
	Error          string `json:"error,omitempty"`
	Email          string `json:"email,omitempty"`
	CaptchaSiteKey string `json:"captcha_site_key,omitempty"`
}

func (LoginPage) ViewName() string { return "login" }

type RegisterPage struct {
	Error          string   `json:"error,omitempty"`
	Reasons        []string `json:"reasons,omitempty"`
	Name           string   `json:"name,omitempty"`
	Email          string   `json:"email,omitempty"`
	CaptchaSiteKey string   `json:"captcha_site_key,omitempty"`
}

func (RegisterPage) ViewName() string { return "register" }

// PostRow is one entry of the home listing. Content may be truncated.
type PostRow struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	CommentCount int64     `json:"comment_count"`
}

type PageLink struct {
	Number  int  `json:"number"`
	Current bool `json:"current,omitempty"`
}

// HomePage is the paginated post listing. Next and Previous are zero when
// there is no such page.
type HomePage struct {
	Rows       []PostRow  `json:"rows"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PagesCount int        `json:"pages_count"`
	Pages      []PageLink `json:"pages"`
	Next       int        `json:"next,omitempty"`
	Previous   int        `json:"previous,omitempty"`
}

func (HomePage) ViewName() string { return "home" }

type PostDetail struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Edited    bool      `json:"edited"`
}

type CommentRow struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PostPage renders a single post. DeleteToken is only set for the owner.
type PostPage struct {
	Post         PostDetail   `json:"post"`
	IsOwner      bool         `json:"is_owner"`
	DeleteToken  string       `json:"delete_token,omitempty"`
	Comments     []CommentRow `json:"comments"`
	CommentCount int          `json:"comment_count"`
	CommentToken string       `json:"comment_token,omitempty"`
	Error        string       `json:"error,omitempty"`
}

func (PostPage) ViewName() string { return "post" }

// EditorPage serves both creation (PostID == 0) and editing.
type EditorPage struct {
	Heading string `json:"heading"`
	PostID  int64  `json:"post_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
	Token   string `json:"csrf_token"`
}

func (EditorPage) ViewName() string { return "editor" }

type ErrorPage struct {
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (ErrorPage) ViewName() string { return "error" }
