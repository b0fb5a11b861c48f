package persona

// affix is one branch of a theme's name rule: a pool of words and how a
// drawn word is joined to the name stem.
type affix struct {
	pool   []string
	before bool
	sep    string
}

func (a affix) join(stem, word string) string {
	if a.before {
		return word + a.sep + stem
	}
	return stem + a.sep + word
}

// theme holds everything needed to generate a persona for one universe
type theme struct {
	info Info

	// heads is used when the coin comes up true, tails otherwise
	heads affix
	tails affix
	// stem rewrites the first name before it is joined; nil keeps it as is
	stem func(firstName string, heads bool) string

	roles     []string
	template  string
	backstory string
}

// lookup is the closed dispatch over ThemeID
func lookup(t ThemeID) *theme {
	switch t {
	case ThemeSciFi:
		return &sciFi
	case ThemeFantasy:
		return &fantasy
	case ThemeNoir:
		return &noir
	case ThemeAnime:
		return &anime
	case ThemePrehistoric:
		return &prehistoric
	default:
		return nil
	}
}

var sciFi = theme{
	info: Info{Label: "Sci-Fi", Slug: "sci-fi", Icon: "zap", Color: "from-blue-500 to-purple-600"},
	heads: affix{
		pool:   []string{"Neo", "Cyber", "Quantum", "Astro", "Vex"},
		before: true,
		sep:    "-",
	},
	tails: affix{
		pool: []string{"tron", "nix", "nova", "byte", "flux"},
		sep:  " ",
	},
	roles: []string{
		"a brilliant quantum physicist",
		"a rogue AI programmer",
		"a starship captain",
		"a cybernetic engineer",
		"an interstellar diplomat",
	},
	template: "In this universe, you're %s navigating a world of advanced technology and interstellar politics.",
	backstory: "In the year 2187, the boundaries between human consciousness and artificial intelligence have blurred. " +
		"You've pioneered revolutionary neural interface technology that allows direct mind-to-machine communication. " +
		"Your work has made you both celebrated and feared, as corporations and governments vie for control of your innovations. " +
		"Recently, you've discovered a hidden signal in the quantum substrate that suggests we're not alone in the multiverse. " +
		"Now you must navigate a web of conspiracy while protecting your discovery from those who would weaponize it.",
}

var fantasy = theme{
	info: Info{Label: "Fantasy", Slug: "fantasy", Icon: "sparkles", Color: "from-emerald-500 to-teal-700"},
	heads: affix{
		pool:   []string{"Lord", "Lady", "Sir", "Magus", "Elder"},
		before: true,
		sep:    " ",
	},
	tails: affix{
		pool: []string{"the Brave", "Stormborn", "Lightbringer", "of the Ancient Woods", "Dragonheart"},
		sep:  " ",
	},
	roles: []string{
		"a powerful archmage",
		"a legendary warrior",
		"a cunning rogue",
		"a wise druid",
		"a royal heir to a mystical kingdom",
	},
	template: "In this realm of magic and wonder, you're %s with a destiny that's intertwined with ancient prophecies.",
	backstory: "Born under the twin moons of Eldoria, you were marked from birth with the ancient sigil of the Arcane Guardians. " +
		"Raised in the hidden valley of Mistwood by the elders of the Crystal Order, you mastered the elemental arts while other children learned simple games. " +
		"When the Shadow Blight began consuming the outer kingdoms, the prophecy of the Seventh Seal pointed to you as the realm's salvation. " +
		"Now, with your enchanted staff and loyal companions, you journey across treacherous lands to unite the fractured kingdoms against the coming darkness.",
}

var noirNicknames = []string{`"Slick"`, `"Lucky"`, `"Shadow"`, `"Trouble"`, `"Ace"`}

var noir = theme{
	info: Info{Label: "Noir", Slug: "noir", Icon: "skull", Color: "from-gray-700 to-gray-900"},
	heads: affix{
		pool: noirNicknames,
		sep:  " ",
	},
	tails: affix{
		pool:   noirNicknames,
		before: true,
		sep:    " ",
	},
	roles: []string{
		"a hard-boiled detective",
		"a mysterious informant",
		"a skilled con artist",
		"a tenacious reporter",
		"a world-weary private eye",
	},
	template: "In this shadowy world of intrigue, you're %s navigating the dangerous streets of a city that never sleeps.",
	backstory: "The rain beats against the windows of your downtown office as you light another cigarette. " +
		"Fifteen years on the force taught you one thing: in this city, everyone's got secrets. " +
		"After that case went sideways and your partner took a bullet, you turned in your badge and opened your own agency. " +
		"Now you work in the shadows, taking cases the police won't touch. " +
		"Your latest client is a dame with trouble written all over her, but the stack of cash she left on your desk means you're already involved. " +
		"Something about missing jewels, a corrupt politician, and a trail of bodies that keeps getting longer.",
}

var anime = theme{
	info: Info{Label: "Anime", Slug: "anime", Icon: "cherry", Color: "from-pink-500 to-rose-600"},
	heads: affix{
		pool: []string{"-kun", "-chan", "-sama", "-senpai", "-san"},
	},
	tails: affix{
		pool:   []string{"Hikari", "Yami", "Kaze", "Hoshi", "Tsubasa"},
		before: true,
		sep:    " ",
	},
	roles: []string{
		"a legendary swordmaster",
		"a magical girl with hidden powers",
		"a mecha pilot defending humanity",
		"a spirit detective solving supernatural cases",
		"an academy student with extraordinary abilities",
	},
	template: "In this vibrant and stylized world, you're %s on an epic journey of friendship and self-discovery.",
	backstory: "You never expected to be chosen. " +
		"It was just an ordinary day at school when the mysterious transfer student handed you an ancient amulet, claiming you were the reincarnation of a legendary hero. " +
		"That night, the amulet glowed with an otherworldly light, awakening powers you never knew you had. " +
		"Now you balance your school life with your secret identity as a guardian of the realms, fighting alongside your friends against the Dark Syndicate. " +
		"With each battle, your powers grow stronger, but so does the connection to your past life—and the tragic fate that befell the previous hero.",
}

var prehistoric = theme{
	info: Info{Label: "Prehistoric", Slug: "prehistoric", Icon: "palmtree", Color: "from-amber-500 to-yellow-600"},
	heads: affix{
		pool:   []string{"Grog", "Thag", "Krag", "Rok", "Zug"},
		before: true,
		sep:    " ",
	},
	tails: affix{
		pool: []string{"the Hunter", "Stonefist", "Mammoth-Slayer", "Fire-Bringer", "Cave-Finder"},
		sep:  " ",
	},
	stem: func(firstName string, heads bool) string {
		short := truncateRunes(firstName, 3)
		if heads {
			return short
		}
		return short + "-" + short
	},
	roles: []string{
		"a respected tribal leader",
		"a skilled hunter-gatherer",
		"a wise shaman with healing knowledge",
		"a brave explorer of uncharted territories",
		"an innovative toolmaker",
	},
	template: "In this primordial age of survival, you're %s guiding your clan through the dangers of a world ruled by nature's law.",
	backstory: "When the great ice came and covered the hunting grounds, many tribes perished. " +
		"But you led your people south, following the migration of the woolly beasts. " +
		"Your discovery of the red flower (fire) made you revered among the clans, and your ability to read the stars guided your people to fertile valleys when others starved. " +
		"The cave paintings you created tell stories that will last for generations, and your invention of new hunting tools has made your tribe the most successful in the region. " +
		"Now, strange two-legs from beyond the great water have arrived with powerful magic, and you must decide whether to fight these invaders or learn their ways.",
}

// truncateRunes returns at most n runes of s
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
