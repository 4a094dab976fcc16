package application

const (
	msgRequired = "This question is required"
	msgRating   = "Please select a rating"
	msgOption   = "Please select an option"
)

// Team is a recruiting team and the questions only its applicants answer.
type Team struct {
	Name      string
	Prefix    string
	Questions []Question
}

// Question is a team specific answer key, e.g. "design_softwares".
type Question struct {
	Key      string
	Required bool
	Message  string
}

func required(team, suffix, message string) Question {
	return Question{Key: team + "_" + suffix, Required: true, Message: message}
}

func optional(team, suffix string) Question {
	return Question{Key: team + "_" + suffix}
}

// teams in the order the form offers them
var teams = []Team{
	{
		Name:   "Marketing",
		Prefix: "marketing",
		Questions: []Question{
			required("marketing", "jobDescription", msgRequired),
			required("marketing", "experience", msgRequired),
			required("marketing", "qualities", msgRequired),
			required("marketing", "techniques", msgRequired),
			required("marketing", "sponsorship", msgOption),
		},
	},
	{
		Name:   "Production/Video",
		Prefix: "production",
		Questions: []Question{
			required("production", "jobDescription", msgRequired),
			required("production", "experience", msgRequired),
			optional("production", "softwares"),
			optional("production", "portfolioLink"),
			required("production", "comfortableLearning", msgOption),
		},
	},
	{
		Name:   "Content Writing",
		Prefix: "content",
		Questions: []Question{
			required("content", "jobDescription", msgRequired),
			required("content", "experience", msgRequired),
			optional("content", "writeReadFreq"),
			optional("content", "portfolio"),
		},
	},
	{
		Name:   "Operations",
		Prefix: "operations",
		Questions: []Question{
			required("operations", "jobDescription", msgRequired),
			required("operations", "experience", msgRequired),
			required("operations", "emergencyHandling", msgRating),
		},
	},
	{
		Name:   "Design Team",
		Prefix: "design",
		Questions: []Question{
			required("design", "jobDescription", msgRequired),
			required("design", "experience", msgRequired),
			required("design", "softwares", msgRequired),
			required("design", "feedback", msgRequired),
			required("design", "components", msgRequired),
		},
	},
	{
		Name:   "Curation",
		Prefix: "curation",
		Questions: []Question{
			required("curation", "jobDescription", msgRequired),
			required("curation", "experience", msgRequired),
			required("curation", "interactionComfort", msgRating),
			required("curation", "eventFreq", msgRating),
		},
	},
	{
		Name:   "Host Team",
		Prefix: "host",
		Questions: []Question{
			required("host", "jobDescription", msgRequired),
			required("host", "experience", msgRequired),
			required("host", "aboutYourself", msgRequired),
			required("host", "videoApproach", msgRequired),
		},
	},
}

// returns the team with the given form value
func TeamByName(name string) (Team, bool) {
	for _, t := range teams {
		if t.Name == name {
			return t, true
		}
	}

	return Team{}, false
}

// returns every team in form order
func Teams() []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	return out
}
