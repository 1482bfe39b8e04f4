// Package vk fetches profile photo descriptors from the VK API.
//
// A single photos.get call lists the user's profile album with likes and every
// size variant. Each item is reduced to the variant with the largest area and
// given a file name derived from its like count:
//
//	client, err := vk.NewClient(cfg, log)
//	if err != nil {
//	    return err
//	}
//	photos, err := client.FetchProfilePhotos(ctx, "12345", 5)
//	// photos[0].FileName == "10.jpg", photos[0].SizeTag == "z"
//
// Names repeat the like count only once; later photos with the same count get
// the upload date appended in the configured time zone ("10_2024-01-03.jpg").
//
// Failures are reported as *errors.Error values with Op set to "fetch":
// transport errors for network problems and non-200 statuses, api errors for
// VK's own error payloads and schema errors for responses that cannot be used.
package vk
