package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide writes step-by-step instructions for obtaining both tokens
func ShowTokenGuide(w io.Writer) {
	line := strings.Repeat("=", 80)

	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "OBTAINING API TOKENS")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "vkbackup needs two tokens: one to read photos from VK and one to")
	fmt.Fprintln(w, "write files to your Yandex.Disk.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 1: VK access token")
	fmt.Fprintln(w, "   - Create a standalone app at https://vk.com/apps?act=manage")
	fmt.Fprintln(w, "   - Open this URL with your app id, allow access and copy access_token")
	fmt.Fprintln(w, "     from the address bar of the page you are redirected to:")
	fmt.Fprintln(w, "     https://oauth.vk.com/authorize?client_id=APP_ID&display=page&scope=photos&response_type=token&v=5.131")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 2: Yandex.Disk OAuth token")
	fmt.Fprintln(w, "   - Open https://yandex.ru/dev/disk/poligon/ while logged in")
	fmt.Fprintln(w, "   - Press 'Get OAuth token' and copy the value")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 3: Save them")
	fmt.Fprintln(w, "   Either put them into settings.ini:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "     [Tokens]")
	fmt.Fprintln(w, "     vk_token = ...")
	fmt.Fprintln(w, "     yd_token = ...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "   or run 'vkbackup auth login' to keep them in the system keychain.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SECURITY WARNING:")
	fmt.Fprintln(w, "   - Both tokens give access to your accounts")
	fmt.Fprintln(w, "   - Never commit settings.ini to version control")
	fmt.Fprintln(w, line)
}
