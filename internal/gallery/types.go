package gallery

import "time"

// GalleryItem is one archived media item. Created exactly once per successful
// ingestion and never updated or deleted by this pipeline.
type GalleryItem struct {
	ID          string    `dynamodbav:"id" json:"id"`
	Type        string    `dynamodbav:"type" json:"type"` // image|video
	URL         string    `dynamodbav:"url" json:"url"`
	Caption     string    `dynamodbav:"caption" json:"caption"`
	Contributor string    `dynamodbav:"contributor" json:"contributor"`
	CreatedAt   time.Time `dynamodbav:"created_at" json:"created_at"`
}

// HistoryEntry is an append-only audit record written alongside each
// GalleryItem. Its id is generated independently, so an entry and the item it
// describes are linked only by timestamp and content proximity.
type HistoryEntry struct {
	ID          string    `dynamodbav:"id" json:"id"`
	Contributor string    `dynamodbav:"contributor" json:"contributor"`
	Action      string    `dynamodbav:"action" json:"action"`
	Type        string    `dynamodbav:"type" json:"type"`
	ItemName    string    `dynamodbav:"itemName" json:"itemName"`
	Timestamp   time.Time `dynamodbav:"timestamp" json:"timestamp"`
}
