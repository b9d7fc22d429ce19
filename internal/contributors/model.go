package contributors

// Contributor is a known family member in the directory. The directory is
// owned elsewhere; this pipeline only reads it.
type Contributor struct {
	ID    string `dynamodbav:"id" json:"id"`
	Name  string `dynamodbav:"name" json:"name"`
	Phone string `dynamodbav:"phone" json:"phone"`
}
