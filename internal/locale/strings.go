package locale

// Key names a user-facing string.
type Key string

// String keys. Values in the tables below are fmt format strings.
const (
	Preparing           Key = "preparing"
	SearchingRuntime    Key = "searching_runtime"
	RuntimeFound        Key = "runtime_found"
	ChooseRuntime       Key = "choose_runtime"
	RememberChoice      Key = "remember_choice"
	ForceDownload       Key = "force_download"
	DownloadAttempt     Key = "download_attempt"
	DownloadingRuntime  Key = "downloading_runtime"
	DownloadedMB        Key = "downloaded_mb"
	DownloadRetrying    Key = "download_retrying"
	InstallingRuntime   Key = "installing_runtime"
	InstallingProgress  Key = "installing_runtime_progress"
	ExtractingLauncher  Key = "extracting_launcher"
	StageKeptPrevious   Key = "stage_kept_previous"
	LaunchingLauncher   Key = "launching_launcher"
	Launched            Key = "launched"
	RulesTitle          Key = "rules_title"
	RulesAccept         Key = "rules_accept"
	RulesRemember       Key = "rules_remember"
	Cancel              Key = "cancel"
	Cancelled           Key = "cancelled"
	DownloadFailed      Key = "download_failed"
	InstallFailed       Key = "install_failed"
	StageFailed         Key = "stage_failed"
	LaunchFailed        Key = "launch_failed"
	NoDecisionAvailable Key = "no_decision_available"
)

var builtin = map[string]map[Key]string{
	"en": {
		Preparing:           "Preparing...",
		SearchingRuntime:    "Looking for an installed Java runtime...",
		RuntimeFound:        "Using Java at %s",
		ChooseRuntime:       "Several compatible Java runtimes were found. Choose one:",
		RememberChoice:      "Remember my choice",
		ForceDownload:       "Download a fresh runtime instead",
		DownloadAttempt:     "Attempting to download %d",
		DownloadingRuntime:  "Downloading Java...",
		DownloadedMB:        "Downloaded %.2f MB of %.2f MB",
		DownloadRetrying:    "Download failed, retrying...",
		InstallingRuntime:   "Installing Java...",
		InstallingProgress:  "Unpacking Java in %s...",
		ExtractingLauncher:  "Extracting launcher...",
		StageKeptPrevious:   "Launcher file is in use, keeping the existing copy",
		LaunchingLauncher:   "Launching launcher...",
		Launched:            "Launcher started",
		RulesTitle:          "Server rules",
		RulesAccept:         "I have read and accept the rules",
		RulesRemember:       "Do not show again",
		Cancel:              "Cancel",
		Cancelled:           "Installation cancelled by user",
		DownloadFailed:      "Could not download Java from any mirror",
		InstallFailed:       "Java installation failed",
		StageFailed:         "Could not prepare the launcher file",
		LaunchFailed:        "Could not start the launcher",
		NoDecisionAvailable: "A choice is required but no interactive terminal is available",
	},
	"ru": {
		Preparing:           "Подготовка...",
		SearchingRuntime:    "Поиск установленной Java...",
		RuntimeFound:        "Используется Java: %s",
		ChooseRuntime:       "Найдено несколько подходящих версий Java. Выберите одну:",
		RememberChoice:      "Запомнить выбор",
		ForceDownload:       "Скачать новую версию",
		DownloadAttempt:     "Попытка загрузки %d",
		DownloadingRuntime:  "Скачивание Java...",
		DownloadedMB:        "Скачано %.2f МБ из %.2f МБ",
		DownloadRetrying:    "Ошибка загрузки, повтор...",
		InstallingRuntime:   "Установка Java...",
		InstallingProgress:  "Распаковка Java в %s...",
		ExtractingLauncher:  "Извлечение лаунчера...",
		StageKeptPrevious:   "Файл лаунчера занят, используется прежняя копия",
		LaunchingLauncher:   "Запуск лаунчера...",
		Launched:            "Лаунчер запущен",
		RulesTitle:          "Правила сервера",
		RulesAccept:         "Я прочитал и принимаю правила",
		RulesRemember:       "Больше не показывать",
		Cancel:              "Отмена",
		Cancelled:           "Установка отменена пользователем",
		DownloadFailed:      "Не удалось скачать Java ни с одного зеркала",
		InstallFailed:       "Не удалось установить Java",
		StageFailed:         "Не удалось подготовить файл лаунчера",
		LaunchFailed:        "Не удалось запустить лаунчер",
		NoDecisionAvailable: "Требуется выбор, но интерактивный терминал недоступен",
	},
}
