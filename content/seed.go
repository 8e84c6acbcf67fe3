package content

import "time"

// Bundle is the default content written when the store is first found empty.
type Bundle struct {
	Categories []Category
	Projects   []Project
	Contacts   []Contact
	Profile    Profile
}

// DefaultProfile is shown until the profile document has loaded.
func DefaultProfile() Profile {
	return Profile{
		Name:            "GaloDev",
		Title:           "VFX Artist & Roblox Developer",
		ShortBio:        "Creating immersive visual experiences on Roblox for over 3 years.",
		FullBio:         "With more than 3 years of experience, I turn creative ideas into spectacular visual effects for Roblox games. I specialize in particle systems, magic, fire, water and much more.",
		AvatarURL:       "https://picsum.photos/id/64/200/200",
		Skills:          []string{"VFX", "Particle Systems", "Roblox Studio", "Lua Scripting", "Blender", "Photoshop"},
		ExperienceYears: 3,
	}
}

// SeedBundle returns the default categories, projects, contacts and profile.
// Project creation times are set to now.
func SeedBundle(now time.Time) Bundle {
	created := now.UTC().Format(time.RFC3339)
	return Bundle{
		Categories: []Category{
			{ID: "c1", Name: "VFX", Icon: "✨", Active: true, Order: 1},
			{ID: "c2", Name: "GFX", Icon: "🎨", Active: true, Order: 2},
			{ID: "c3", Name: "Modeling", Icon: "🗿", Active: true, Order: 3},
			{ID: "c4", Name: "Animation", Icon: "🎬", Active: true, Order: 4},
			{ID: "c5", Name: "Programming", Icon: "💻", Active: true, Order: 5},
		},
		Projects: []Project{
			{
				ID:          "p1",
				Title:       "Fire Magic System",
				CategoryID:  "c1",
				Description: "Advanced modular fire magic system with dynamic lighting.",
				DescriptionDetailed: "I developed a complete fire magic framework for a high-fantasy RPG on Roblox.\n\n" +
					"Features include:\n" +
					"- Custom particle emitters optimized for mobile.\n" +
					"- Dynamic light emission that interacts with the environment.\n" +
					"- Physics-based projectile motion.\n" +
					"- Modular script architecture allowing easy addition of new spells.",
				Featured:  true,
				CreatedAt: created,
				Media: []ProjectMedia{
					{ID: "m1", URL: "https://picsum.photos/id/1/800/450", Type: MediaImage, IsMain: true, Description: "Main spell cast effect"},
					{ID: "m2", URL: "https://picsum.photos/id/2/800/450", Type: MediaImage, Description: "Explosion impact"},
				},
			},
			{
				ID:                  "p2",
				Title:               "Cyberpunk City UI",
				CategoryID:          "c2",
				Description:         "Neon-styled user interface for a sci-fi shooter.",
				DescriptionDetailed: `A complete UI overhaul for "Neon Nights". Includes HUD, Inventory, and Shop systems using the latest Roact framework.`,
				Featured:            true,
				CreatedAt:           created,
				Media: []ProjectMedia{
					{ID: "m3", URL: "https://picsum.photos/id/3/800/450", Type: MediaImage, IsMain: true, Description: "HUD Overlay"},
				},
			},
			{
				ID:          "p3",
				Title:       "Boss Fight Animation",
				CategoryID:  "c4",
				Description: "Complex rigging and animation for final boss.",
				CreatedAt:   created,
				Media: []ProjectMedia{
					{ID: "m4", URL: "https://picsum.photos/id/4/800/450", Type: MediaImage, IsMain: true, Description: "Boss Idle"},
				},
			},
		},
		Contacts: []Contact{
			{ID: "ct1", Platform: "Instagram", Username: "@galodev_vfx", Link: "https://instagram.com"},
			{ID: "ct2", Platform: "Discord", Username: "GaloDev#1234", Link: "https://discord.com"},
			{ID: "ct3", Platform: "WhatsApp", Username: "+55 (11) 98765-4321", Link: "https://whatsapp.com"},
		},
		Profile: DefaultProfile(),
	}
}
