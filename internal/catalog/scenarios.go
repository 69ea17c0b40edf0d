package catalog

import (
	"time"

	"github.com/mcoot/survivordraft/internal/model"
)

const defaultTimeLimit = 60 * time.Second

func item(id, name, description string, category model.ItemCategory) model.Item {
	return model.Item{ID: model.ItemID(id), Name: name, Description: description, Category: category}
}

func situation(id, description string, ideal ...model.ItemID) model.Situation {
	return model.Situation{
		ID:          model.SituationID(id),
		Description: description,
		TimeLimit:   defaultTimeLimit,
		IdealItems:  ideal,
	}
}

func builtinScenarios() []model.Scenario {
	return []model.Scenario{
		{
			ID:              "desert",
			Name:            "Relentless Desert",
			Description:     "You are lost in a vast desert after a plane crash. Survive the scorching days and freezing nights.",
			BackgroundImage: "/scenarios/desert.jpg",
			Items: []model.Item{
				item("water", "Canteen", "A 2 litre canteen for carrying water", model.CategoryIdeal),
				item("compass", "Compass", "A compass for navigation", model.CategoryIdeal),
				item("blanket", "Thermal Blanket", "Protection from the sun and the night cold", model.CategoryIdeal),

				item("firstaid", "First Aid Kit", "For medical emergencies", model.CategoryPossible),
				item("knife", "Survival Knife", "A multi-purpose tool", model.CategoryPossible),
				item("lighter", "Lighter", "For making fire", model.CategoryPossible),
				item("rope", "Rope", "15 metres of sturdy rope", model.CategoryPossible),

				item("glitter", "Jar of Glitter", "To sparkle in the dark?", model.CategoryAbsurd),
				item("unicorn", "Unicorn Pyjamas", "At least they are warm...", model.CategoryAbsurd),
				item("remote", "Remote Control Without Batteries", "Maybe it runs on solar power?", model.CategoryAbsurd),
			},
			Situations: []model.Situation{
				situation("sandstorm", "A sandstorm is approaching. How do you protect yourself?", "blanket", "compass"),
				situation("oasis", "You found an oasis, but the water looks murky. What do you do?", "water", "firstaid"),
				situation("night", "Night is falling and the temperature is dropping fast. How do you prepare?", "blanket", "lighter"),
				situation("lost", "You have lost your bearings in the endless desert. How do you find your way?", "compass", "knife"),
				situation("rescue", "You spot a plane on the horizon. How do you get its attention?", "lighter", "glitter"),
			},
		},
		{
			ID:              "jungle",
			Name:            "Amazon Jungle",
			Description:     "Your boat sank on a river in the Amazon. Survive the dense rainforest while you look for help.",
			BackgroundImage: "/scenarios/jungle.jpg",
			Items: []model.Item{
				item("machete", "Machete", "For cutting through dense vegetation", model.CategoryIdeal),
				item("mosquitonet", "Mosquito Net", "Protection against insects", model.CategoryIdeal),
				item("matches", "Waterproof Matches", "For making fire even in the damp", model.CategoryIdeal),

				item("firstaid", "First Aid Kit", "With antidotes for bites", model.CategoryPossible),
				item("rope", "Rope", "20 metres of sturdy rope", model.CategoryPossible),
				item("compass", "Compass", "For navigation", model.CategoryPossible),
				item("waterpurifier", "Water Purifier", "Removes parasites and bacteria", model.CategoryPossible),

				item("dino", "Dinosaur Costume", "To blend in with the reptiles?", model.CategoryAbsurd),
				item("party", "Party Whistle", "Maybe it scares off predators...", model.CategoryAbsurd),
				item("chalk", "Giant Chalk", "For drawing pretty pictures on trees", model.CategoryAbsurd),
			},
			Situations: []model.Situation{
				situation("rain", "A tropical storm is coming. How do you protect yourself?", "mosquitonet", "rope"),
				situation("predator", "You hear a jaguar roaring nearby. What do you do?", "machete", "matches"),
				situation("river", "You need to cross a wide river. How do you proceed?", "rope", "compass"),
				situation("thirst", "You found water, but it looks contaminated. How do you deal with it?", "waterpurifier", "firstaid"),
				situation("path", "The vegetation is too dense to pass. What do you do?", "machete", "compass"),
			},
		},
		{
			ID:              "arctic",
			Name:            "Frozen Arctic",
			Description:     "Your plane made an emergency landing in the Arctic. Survive the extreme cold and find a way to signal for help.",
			BackgroundImage: "/scenarios/arctic.jpg",
			Items: []model.Item{
				item("sleepingbag", "Sleeping Bag", "Rated for extreme temperatures", model.CategoryIdeal),
				item("stove", "Portable Stove", "With fuel for 3 days", model.CategoryIdeal),
				item("flare", "Flare Kit", "For signalling rescuers", model.CategoryIdeal),

				item("goggles", "Snow Goggles", "Protection against snow blindness", model.CategoryPossible),
				item("axe", "Axe", "For cutting ice and wood", model.CategoryPossible),
				item("firstaid", "First Aid Kit", "With hypothermia treatments", model.CategoryPossible),
				item("radio", "Emergency Radio", "For communication", model.CategoryPossible),

				item("welcome", "Welcome Mat", "To greet the polar bears?", model.CategoryAbsurd),
				item("skate", "A Single Roller Skate", "Better than nothing for sliding on ice...", model.CategoryAbsurd),
				item("plant", "Potted Plant", "A cosy touch for the igloo", model.CategoryAbsurd),
			},
			Situations: []model.Situation{
				situation("blizzard", "A blizzard is approaching. How do you prepare?", "sleepingbag", "stove"),
				situation("thin_ice", "You need to cross an area of thin ice. What do you do?", "axe", "goggles"),
				situation("polar_bear", "You spot a polar bear coming closer. How do you react?", "flare", "axe"),
				situation("rescue", "You hear a helicopter in the distance. How do you get its attention?", "flare", "radio"),
				situation("shelter", "Night is coming and you need shelter. What do you do?", "sleepingbag", "stove"),
			},
		},
	}
}
