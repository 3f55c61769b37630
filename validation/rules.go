package validation

// Shared chains.
var (
	emailRules = []Rule{
		{Tag: "notblank", Message: "email is required"},
		{Tag: "email", Message: "email format is invalid"},
		{Tag: "max=100", Message: "email must be at most 100 characters"},
	}
	passwordRules = []Rule{
		{Tag: "notblank", Message: "password is required"},
		{Tag: "min=6,max=25", Message: "password must be between 6 and 25 characters"},
	}
	idRules = []Rule{
		{Tag: "notblank", Message: "id is required"},
		{Tag: "numeric", Message: "id must be a number"},
		{Tag: "gt=0", Message: "id must be a positive integer"},
	}
	titleLength       = Rule{Tag: "min=2,max=100", Message: "title must be between 2 and 100 characters"}
	descriptionLength = Rule{Tag: "max=500", Message: "description must be at most 500 characters"}
	statusRule        = Rule{Tag: "taskstatus", Message: "status must be one of 0, 1, 2, 3, 4"}
)

// RegisterRules validates POST /register.
var RegisterRules = []Field{
	String("email", emailRules...),
	Secret("password", passwordRules...),
}

// LoginRules validates POST /login. It is identical to RegisterRules.
var LoginRules = RegisterRules

// CreateTaskRules validates POST /tasks/create.
var CreateTaskRules = []Field{
	String("title", Rule{Tag: "notblank", Message: "title is required"}, titleLength),
	String("description", descriptionLength),
	Number("status", Rule{Tag: "notblank", Message: "status is required"}, statusRule),
}

// UpdateTaskRules validates PUT /tasks/update. Everything but id is optional.
var UpdateTaskRules = []Field{
	Number("id", idRules...),
	String("title", titleLength),
	String("description", descriptionLength),
	Number("status", statusRule),
}

// DeleteTaskRules validates DELETE /tasks/delete.
var DeleteTaskRules = []Field{
	Number("id", idRules...),
}

// DetailTaskRules validates GET /tasks/detail.
var DetailTaskRules = []Field{
	Number("id", idRules...),
}

// ListTaskRules validates GET /tasks/list. Paging values are only type-checked;
// out-of-range values are clamped by the store. limit is an alias of page_size.
var ListTaskRules = []Field{
	Number("page", Rule{Tag: "numeric", Message: "page must be a number"}),
	Number("page_size", Rule{Tag: "numeric", Message: "page_size must be a number"}),
	Number("limit", Rule{Tag: "numeric", Message: "limit must be a number"}),
	String("title", Rule{Tag: "max=100", Message: "title must be at most 100 characters"}),
	Number("status", statusRule),
}
