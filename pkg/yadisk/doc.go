// Package yadisk is a minimal Yandex.Disk REST client covering the two calls a
// backup needs: creating a folder and asking the disk to fetch a file from a
// public URL on its own.
//
//	disk := yadisk.NewClient(cfg, log)
//	if err := disk.EnsureFolder(ctx, "vk_profile_photos_42"); err != nil {
//	    return err
//	}
//	href, err := disk.UploadByURL(ctx, "vk_profile_photos_42", "10.jpg", photo.SourceURL)
//
// An existing folder is not an error. An upload is successful once the
// service accepts it with 202; the transfer itself completes asynchronously.
package yadisk
