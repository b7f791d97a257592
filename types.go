package mkmtrees

// Post is a blog article. Content is stored as HTML.
type Post struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Slug             string  `json:"slug"`
	Content          string  `json:"content"`
	Excerpt          string  `json:"excerpt"`
	Published        bool    `json:"published"`
	PublishedAt      *string `json:"published_at"`
	FeaturedImageID  *int64  `json:"featured_image_id"`
	FeaturedImageURL *string `json:"featured_image_url"`
	AuthorID         *int64  `json:"author_id"`
	AuthorName       *string `json:"author_name"`
	MetaTitle        string  `json:"meta_title"`
	MetaDescription  string  `json:"meta_description"`
	CreatedBy        *int64  `json:"created_by"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	Tags             []Tag   `json:"tags"`
}

// Tag labels posts; names are created on demand.
type Tag struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PostCount int    `json:"post_count,omitempty"`
}

// Author is the byline attached to posts and projects. Exactly one author
// is the default at any time.
type Author struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Bio       string `json:"bio"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	AvatarURL string `json:"avatar_url"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PortfolioCategory groups portfolio projects.
type PortfolioCategory struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	SortOrder    int    `json:"sort_order"`
	ProjectCount int    `json:"project_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// PortfolioProject is a completed job shown on the portfolio pages.
type PortfolioProject struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	Description      string         `json:"description"`
	ClientName       string         `json:"client_name"`
	Location         string         `json:"location"`
	ProjectURL       string         `json:"project_url"`
	CategoryID       *int64         `json:"category_id"`
	CategoryName     *string        `json:"category_name"`
	CategorySlug     *string        `json:"category_slug"`
	FeaturedImageID  *int64         `json:"featured_image_id"`
	FeaturedImageURL *string        `json:"featured_image_url"`
	AuthorID         *int64         `json:"author_id"`
	Published        bool           `json:"published"`
	SortOrder        int            `json:"sort_order"`
	CompletedAt      *string        `json:"completed_at"`
	CreatedBy        *int64         `json:"created_by"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	Images           []ProjectImage `json:"images,omitempty"`
}

// Project image categories.
const (
	ImageBefore   = "before"
	ImageAfter    = "after"
	ImageGeneral  = "general"
	ImageProgress = "progress"
)

func validImageCategory(s string) bool {
	switch s {
	case ImageBefore, ImageAfter, ImageGeneral, ImageProgress:
		return true
	}
	return false
}

// ProjectImage attaches a media item to a project gallery.
type ProjectImage struct {
	ID            int64  `json:"id"`
	ProjectID     int64  `json:"project_id"`
	MediaID       int64  `json:"media_id"`
	URL           string `json:"url"`
	AltText       string `json:"alt_text"`
	Caption       string `json:"caption"`
	SortOrder     int    `json:"sort_order"`
	ImageCategory string `json:"image_category"`
	CreatedAt     string `json:"created_at"`
}

// Media is an uploaded file; the bytes live in the blob store under R2Key.
type Media struct {
	ID               int64  `json:"id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	MimeType         string `json:"mime_type"`
	Size             int64  `json:"size"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	URL              string `json:"url"`
	R2Key            string `json:"r2_key"`
	AltText          string `json:"alt_text"`
	UploadedBy       *int64 `json:"uploaded_by"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// Review is a customer testimonial, shown publicly once approved.
type Review struct {
	ID               int64  `json:"id"`
	ReviewerName     string `json:"reviewer_name"`
	ReviewerEmail    string `json:"reviewer_email"`
	ReviewerLocation string `json:"reviewer_location"`
	Rating           int    `json:"rating"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	ServiceType      string `json:"service_type"`
	Approved         bool   `json:"approved"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// Submission is a contact-form entry.
type Submission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Subject     string `json:"subject"`
	ServiceType string `json:"service_type"`
	Message     string `json:"message"`
	Processed   bool   `json:"processed"`
	CreatedAt   string `json:"created_at"`
}

// Newsletter subscriber statuses.
const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
	SubscriberBounced      = "bounced"
)

func validSubscriberStatus(s string) bool {
	switch s {
	case SubscriberActive, SubscriberUnsubscribed, SubscriberBounced:
		return true
	}
	return false
}

// Subscriber is a newsletter list entry, unique by email.
type Subscriber struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	Status         string  `json:"status"`
	SubscribedAt   string  `json:"subscribed_at"`
	UnsubscribedAt *string `json:"unsubscribed_at"`
	Source         string  `json:"source"`
}

// Product is a catalog entry (firewood, woodchip, hire) with its own admin.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	PriceUnit   string   `json:"price_unit"`
	Available   bool     `json:"available"`
	SortOrder   int      `json:"sort_order"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// User is an admin account. The password hash never leaves the store.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"created_at"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Posts             int          `json:"posts"`
	PublishedPosts    int          `json:"published_posts"`
	DraftPosts        int          `json:"draft_posts"`
	Projects          int          `json:"projects"`
	Media             int          `json:"media"`
	Reviews           int          `json:"reviews"`
	PendingReviews    int          `json:"pending_reviews"`
	Submissions       int          `json:"submissions"`
	UnprocessedSubs   int          `json:"unprocessed_submissions"`
	ActiveSubscribers int          `json:"active_subscribers"`
	Products          int          `json:"products"`
	RecentSubmissions []Submission `json:"recent_submissions"`
}
