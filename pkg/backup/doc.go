// Package backup runs a single profile photo backup from VK to Yandex.Disk.
//
// A run moves through fixed states:
//
//	collect_input -> fetch_photos -> create_folder -> upload_loop -> persist_manifest -> done
//
// Fetch and folder failures end the run early and nothing is written. Inside
// the upload loop a rejected photo is logged and skipped; every accepted photo
// is recorded in the manifest, which is saved once the loop ends.
//
// Usage:
//
//	runner, err := backup.New(cfg, log)
//	if err != nil {
//	    return err
//	}
//	runner.SetProgress(ui.NewUploadProgress(os.Stdout, folder, count))
//	result, err := runner.Run(ctx, backup.Request{UserID: "42", Count: 5})
//
// PhotoSource and StorageSink are small interfaces so the runner can be driven
// by fakes in tests.
package backup
