package cli

import (
	"fmt"

	"github.com/diillson/falcon-cost-estimator-go/pkg/console"
	"github.com/diillson/falcon-cost-estimator-go/pkg/version"
)

const banner = `
   ______      __                     ______           __
  / ____/___ _/ /________  ____      / ____/___  _____/ /_
 / /_  / __ '/ / ___/ __ \/ __ \    / /   / __ \/ ___/ __/
/ __/ / /_/ / / /__/ /_/ / / / /   / /___/ /_/ (__  ) /_
/_/    \__,_/_/\___/\____/_/ /_/    \____/\____/____/\__/
`

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	fmt.Println(console.BoldRed(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(console.BrightBlue(fmt.Sprintf("Falcon Cloud Security Cost Estimator (v%s)", formattedVersion)))
}
