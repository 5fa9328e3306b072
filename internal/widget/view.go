package widget

import "github.com/gokatarajesh/venice-quiz-frame/internal/frame"

// View is everything the presentation layer needs to draw the frame.
type View struct {
	ID             string               `json:"id"`
	Loading        bool                 `json:"loading"`
	Title          string               `json:"title"`
	QuestionIndex  int                  `json:"question_index"`
	QuestionNumber int                  `json:"question_number,omitempty"`
	QuestionCount  int                  `json:"question_count"`
	Prompt         string               `json:"prompt,omitempty"`
	Options        []string             `json:"options,omitempty"`
	SelectedOption *int                 `json:"selected_option,omitempty"`
	CanGoBack      bool                 `json:"can_go_back"`
	Complete       bool                 `json:"complete"`
	Score          int                  `json:"score"`
	SafeAreaInsets frame.SafeAreaInsets `json:"safe_area_insets"`
	Added          bool                 `json:"added"`
	AddStatus      string               `json:"add_status,omitempty"`
}
